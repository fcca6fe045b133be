// Command vhdctl is a minimal demonstration front-end over the
// diskimage facade: open an image by format name and read, write, or
// print info about it. It is not a transport -- see internal/gatesim
// for the in-process stand-in for a real gate/ioctl front-end.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"diskimage"
)

func Usage() {
	fmt.Fprintf(os.Stderr, `vhdctl - virtual disk image inspection tool

Usage: %s <action> <format> <path> [args...]

Supported actions:
  info <format> <path>
    Print the disk size diskimage reports for <path>, opened with
    driver <format> (vhd or vmdk).

  read <format> <path> <offset> <length>
    Read <length> bytes starting at <offset> and write them to stdout.

  write <format> <path> <offset> <file>
    Write the contents of <file> to <path> at <offset>. A VMDK target
    silently discards the write; see the vmdk package's Write.

Supported formats: vhd vmdk
`, os.Args[0])
	os.Exit(1)
}

func Main(args []string) {
	if len(args) < 4 {
		Usage()
	}

	action := strings.TrimLeft(args[1], "-")
	format := args[2]
	path := args[3]

	img, err := diskimage.Open(path, format, diskimage.OpenOptions{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer img.Close()

	if action == "info" {
		info := img.Info()
		fmt.Printf("disk size: %d bytes (%s)\n", info.DiskSize, humanize.Bytes(info.DiskSize))
	} else if len(args) > 5 && action == "read" {
		offset, err := strconv.ParseInt(args[4], 10, 64)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: invalid offset:", err)
			os.Exit(1)
		}
		length, err := strconv.Atoi(args[5])
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: invalid length:", err)
			os.Exit(1)
		}
		buf := make([]byte, length)
		if err := img.Read(buf, offset); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		os.Stdout.Write(buf)
	} else if len(args) > 5 && action == "write" {
		offset, err := strconv.ParseInt(args[4], 10, 64)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: invalid offset:", err)
			os.Exit(1)
		}
		payload, err := os.ReadFile(args[5])
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		if err := img.Write(payload, offset); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	} else {
		Usage()
	}
}

func main() {
	Main(os.Args)
}
