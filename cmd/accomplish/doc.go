// Command accomplish is the worklog CLI: it records entries and git
// commits against projects and asks the backend for AI-generated recaps of
// recent work.
package main
