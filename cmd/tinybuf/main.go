// tinybuf - TinyBuf codec CLI tool
//
// Usage:
//
//	tinybuf check <schema.tbuf>                    Resolve a schema and list its types
//	tinybuf encode -s <schema> -t <Type> [file]    Encode JSON to TinyBuf binary (stdout)
//	tinybuf decode -s <schema> -t <Type> [file]    Decode TinyBuf binary to JSON (stdout)
//	tinybuf stream decode -s <schema> -t <Type> [file]
//	                                               Decode TBS1 frames and print JSON lines
//	tinybuf version                                Print version info
//
// If no file is given, reads from stdin.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Neumenon/tinybuf/stream"
	"github.com/Neumenon/tinybuf/tinybuf"
)

const libVersion = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "check":
		runCheck(args)
	case "encode":
		runEncode(args)
	case "decode":
		runDecode(args)
	case "stream":
		if len(args) < 1 || args[0] != "decode" {
			fatal("tinybuf stream: missing subcommand (decode)")
		}
		runStreamDecode(args[1:])
	case "version":
		fmt.Printf("tinybuf %s (TBS1 v%d)\n", libVersion, stream.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "tinybuf: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func runCheck(args []string) {
	if len(args) != 1 {
		fatal("usage: tinybuf check <schema.tbuf>")
	}
	graph := loadGraph(args[0])
	for _, name := range graph.Names() {
		sd, _ := graph.Lookup(name)
		fmt.Printf("type %s\n", sd.Name)
		for _, f := range sd.Fields {
			fmt.Printf("  %s %s\n", f.Name, f.Type)
		}
	}
}

func runEncode(args []string) {
	schema, typeName, input := parseCodecArgs(args, "encode")
	graph := loadGraph(schema)

	data, err := io.ReadAll(input)
	if err != nil {
		fatal("read input: %v", err)
	}
	v, err := tinybuf.FromJSON(graph, typeName, data)
	if err != nil {
		fatal("%v", err)
	}
	out, err := tinybuf.Encode(graph, typeName, v)
	if err != nil {
		fatal("%v", err)
	}
	if _, err := os.Stdout.Write(out); err != nil {
		fatal("write output: %v", err)
	}
}

func runDecode(args []string) {
	schema, typeName, input := parseCodecArgs(args, "decode")
	graph := loadGraph(schema)

	data, err := io.ReadAll(input)
	if err != nil {
		fatal("read input: %v", err)
	}
	v, err := tinybuf.Decode(graph, typeName, data)
	if err != nil {
		fatal("%v", err)
	}
	printJSON(graph, typeName, v)
}

func runStreamDecode(args []string) {
	schema, typeName, input := parseCodecArgs(args, "stream decode")
	graph := loadGraph(schema)

	r := stream.NewReader(input)
	for {
		v, err := r.NextValue(graph, typeName)
		if err == io.EOF {
			return
		}
		if err != nil {
			fatal("%v", err)
		}
		printJSON(graph, typeName, v)
	}
}

// parseCodecArgs handles the shared -s/-t flags plus an optional input
// file, defaulting to stdin.
func parseCodecArgs(args []string, cmd string) (schema, typeName string, input io.Reader) {
	var file string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-s", "--schema":
			i++
			if i >= len(args) {
				fatal("tinybuf %s: %s needs a value", cmd, args[i-1])
			}
			schema = args[i]
		case "-t", "--type":
			i++
			if i >= len(args) {
				fatal("tinybuf %s: %s needs a value", cmd, args[i-1])
			}
			typeName = args[i]
		default:
			if file != "" {
				fatal("tinybuf %s: unexpected argument %q", cmd, args[i])
			}
			file = args[i]
		}
	}
	if schema == "" || typeName == "" {
		fatal("usage: tinybuf %s -s <schema> -t <Type> [file]", cmd)
	}

	input = os.Stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			fatal("open file: %v", err)
		}
		input = bufio.NewReader(f)
	}
	return schema, typeName, input
}

func loadGraph(path string) *tinybuf.TypeGraph {
	f, err := os.Open(path)
	if err != nil {
		fatal("open schema: %v", err)
	}
	defer f.Close()

	decls, err := tinybuf.LoadDecls(f)
	if err != nil {
		fatal("%v", err)
	}
	graph, err := tinybuf.Resolve(decls)
	if err != nil {
		fatal("%v", err)
	}
	return graph
}

func printJSON(graph *tinybuf.TypeGraph, typeName string, v *tinybuf.Value) {
	out, err := tinybuf.ToJSON(graph, typeName, v)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Println(string(out))
}

// fatal prints to stderr and exits. Library errors already carry their
// own "tinybuf:" prefix, so none is added here.
func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `tinybuf - TinyBuf codec CLI

Usage:
  tinybuf check <schema.tbuf>                  Resolve a schema and list its types
  tinybuf encode -s <schema> -t <Type> [file]  Encode JSON to TinyBuf binary
  tinybuf decode -s <schema> -t <Type> [file]  Decode TinyBuf binary to JSON
  tinybuf stream decode -s <schema> -t <Type> [file]
                                               Decode TBS1 frames to JSON lines
  tinybuf version                              Print version info

If no file is given, input is read from stdin.`)
}
