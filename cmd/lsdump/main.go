// Command lsdump inspects LSD dictionary containers: it prints header
// metadata, lists embedded overlay files, and extracts them.
//
// Usage:
//
//	lsdump info dict.lsd
//	lsdump list dict.lsd
//	lsdump extract -o outdir dict.lsd
//	lsdump --key 0x9f info protected.lsd
//
// The --key flag names the XOR seed for obfuscated containers; the key for
// byte position P is seed^P (see lsdict.PositionKey). Plain containers need
// no key.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/dictlab/lsdict"
)

var log = logrus.New()

func main() {
	app := cli.NewApp()
	app.Name = "lsdump"
	app.Usage = "inspect and unpack LSD dictionary containers"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "key",
			Usage: "XOR key seed for obfuscated containers (e.g. 0x9f)",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.GlobalBool("verbose") {
			log.SetLevel(logrus.DebugLevel)
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "info",
			Usage:     "print container header metadata",
			ArgsUsage: "<file.lsd>",
			Action:    infoAction,
		},
		{
			Name:      "list",
			Usage:     "list embedded overlay files",
			ArgsUsage: "<file.lsd>",
			Action:    listAction,
		},
		{
			Name:      "extract",
			Usage:     "extract embedded overlay files",
			ArgsUsage: "<file.lsd>",
			Action:    extractAction,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output directory",
					Value: ".",
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openDict opens the container named by the command's first argument,
// applying the global --key flag when present.
func openDict(c *cli.Context) (*lsdict.Dict, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one container file argument")
	}
	path := c.Args().First()

	keySpec := c.GlobalString("key")
	if keySpec == "" {
		return lsdict.Open(path)
	}
	seed, err := parseKey(keySpec)
	if err != nil {
		return nil, err
	}
	log.Debugf("using XOR key seed 0x%02x", seed)
	return lsdict.OpenObfuscated(path, lsdict.PositionKey(seed))
}

// parseKey parses a hex key seed, with or without a 0x prefix.
func parseKey(s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("bad key %q: %v", s, err)
	}
	return byte(v), nil
}

func infoAction(c *cli.Context) error {
	d, err := openDict(c)
	if err != nil {
		return err
	}
	defer d.Close()

	h := d.Header
	fmt.Printf("Name:     %s\n", h.Name)
	fmt.Printf("Version:  %d.%d\n", h.MajorVersion(), uint16(h.Version))
	fmt.Printf("Entries:  %d\n", h.EntriesCount)
	fmt.Printf("Source:   %d\n", h.SourceLanguage)
	fmt.Printf("Target:   %d\n", h.TargetLanguage)
	return nil
}

func listAction(c *cli.Context) error {
	d, err := openDict(c)
	if err != nil {
		return err
	}
	defer d.Close()

	headings, err := d.ReadOverlayHeadings()
	if err != nil {
		return err
	}
	for _, h := range headings {
		fmt.Printf("%10d  %s\n", h.InflatedSize, h.Name)
	}
	log.Debugf("%d overlay file(s)", len(headings))
	return nil
}

func extractAction(c *cli.Context) error {
	d, err := openDict(c)
	if err != nil {
		return err
	}
	defer d.Close()

	outDir := c.String("out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	headings, err := d.ReadOverlayHeadings()
	if err != nil {
		return err
	}
	for _, h := range headings {
		data, err := d.ReadOverlayEntry(h)
		if err != nil {
			log.Warnf("skipping %q: %v", h.Name, err)
			continue
		}
		// Overlay names come from the container; keep only the base name so
		// a hostile directory cannot write outside outDir.
		dest := filepath.Join(outDir, filepath.Base(filepath.FromSlash(h.Name)))
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
		log.Infof("extracted %s (%d bytes)", dest, len(data))
	}
	return nil
}
