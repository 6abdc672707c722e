// Command server runs the DK400 terminal service.
//
// Configuration comes from the environment (see internal/config), with
// -port and -catalog flags as development overrides. The process shuts
// down gracefully on SIGINT/SIGTERM.
package main
