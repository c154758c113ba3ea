// Package files locates input workbooks.
//
// The command line accepts either a workbook or a directory; for a
// directory the most recently modified xlsx file is used:
//
//	discovery := files.NewDiscovery("")
//	input, err := discovery.ResolveInput("data")
package files
