// Command powersuspendd runs the power-suspend coordinator and talks to a
// running one.
//
// Usage:
//
//	powersuspendd <command> [flags]
//
// Commands:
//
//	serve      Run the coordinator (HTTP API, mDNS, journal, console)
//	get        Read a control endpoint from a running coordinator
//	set        Write a control endpoint
//	trigger    Invoke the autosleep or panel hook
//	handlers   List registered handlers
//	watch      Stream dispatch notifications
//	discover   Browse for coordinators on the local network
//	journal    View, export or summarize an event journal
//	version    Print the version
//
// Examples:
//
//	# Run with the interactive console in hybrid mode
//	powersuspendd serve --mode hybrid --interactive
//
//	# Suspend via the control surface (userspace mode)
//	powersuspendd set state 1
//
//	# Simulate the panel hook
//	powersuspendd trigger panel 1
//
//	# Summarize a journal
//	powersuspendd journal stats /var/lib/powersuspend/events.plog
package main

func main() {
	Execute()
}
