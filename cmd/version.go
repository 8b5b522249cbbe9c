package cmd

// Version is the application version. It is intended to be overridden at
// build time:
//
//	go build -ldflags "-X github.com/SUSINDRAREDDY/Job-Agent/cmd.Version=1.0.0"
var Version = "0.1.0"
