// Command shortcode converts between content UUIDs and TabooTV short codes.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/urfave/cli/v3"
	"taboo.local/internal/app/videolink"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "shortcode:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "shortcode",
		Usage: "encode and decode share link codes",
		Commands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "print the short code of each UUID",
				ArgsUsage: "<uuid>...",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return eachArg(cmd, func(arg string) error {
						code, err := videolink.Encode(arg)
						if err != nil {
							return fmt.Errorf("%q: %w", arg, err)
						}
						fmt.Fprintln(out, code)
						return nil
					})
				},
			},
			{
				Name:      "decode",
				Usage:     "print the UUID behind each short code",
				ArgsUsage: "<code>...",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return eachArg(cmd, func(arg string) error {
						id, err := videolink.Decode(arg)
						if err != nil {
							return fmt.Errorf("%q: %w", arg, err)
						}
						fmt.Fprintln(out, id)
						return nil
					})
				},
			},
			{
				Name:      "canonical",
				Usage:     "rewrite short codes into their 22-char form",
				ArgsUsage: "<code>...",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return eachArg(cmd, func(arg string) error {
						code, err := videolink.Canonicalize(arg)
						if err != nil {
							return fmt.Errorf("%q: %w", arg, err)
						}
						fmt.Fprintln(out, code)
						return nil
					})
				},
			},
			{
				Name:      "classify",
				Usage:     "tell whether each /v/ segment is a uuid, a short code or invalid",
				ArgsUsage: "<segment>...",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return eachArg(cmd, func(arg string) error {
						kind := videolink.ClassifySegment(arg)
						id, err := videolink.ParseLinkSegment(arg)
						if err != nil {
							fmt.Fprintf(out, "%s\t%s\t%v\n", arg, kind, err)
							return nil
						}
						fmt.Fprintf(out, "%s\t%s\t%s\n", arg, kind, id)
						return nil
					})
				},
			},
			{
				Name:      "qr",
				Usage:     "render the share link of a UUID or code as a QR code",
				ArgsUsage: "<uuid|code>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "base-url",
						Usage: "share link origin",
						Value: "https://taboo.tv",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "write a PNG to this path instead of printing to the terminal",
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "PNG edge in pixels",
						Value: 256,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return fmt.Errorf("qr takes exactly one argument")
					}
					base := strings.TrimRight(cmd.String("base-url"), "/")
					if err := videolink.ValidateBaseURL(base); err != nil {
						return fmt.Errorf("--base-url %q: %w", base, err)
					}
					id, err := videolink.ParseLinkSegment(cmd.Args().First())
					if err != nil {
						return err
					}
					code, err := videolink.Encode(id)
					if err != nil {
						return err
					}
					link := base + "/v/" + code

					if path := cmd.String("out"); path != "" {
						if err := qrcode.WriteFile(link, qrcode.Medium, cmd.Int("size"), path); err != nil {
							return err
						}
						fmt.Fprintln(out, path)
						return nil
					}
					q, err := qrcode.New(link, qrcode.Medium)
					if err != nil {
						return err
					}
					fmt.Fprint(out, q.ToSmallString(false))
					fmt.Fprintln(out, link)
					return nil
				},
			},
		},
	}
}

func eachArg(cmd *cli.Command, fn func(string) error) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("%s: missing argument", cmd.Name)
	}
	for _, arg := range cmd.Args().Slice() {
		if err := fn(arg); err != nil {
			return err
		}
	}
	return nil
}
