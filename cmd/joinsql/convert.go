package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/joinsql/querydef"
)

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert a query document between YAML and msgpack",
		Long:  "Convert a query document between YAML and msgpack. The formats are picked by file extension: .msgpack and .mpk are msgpack, anything else is YAML.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.convert(args[0], args[1])
		},
	}
}

func (a *app) convert(in, out string) error {
	doc, err := querydef.Load(in)
	if err != nil {
		return err
	}
	encode := querydef.Marshal
	if querydef.IsBinary(out) {
		encode = querydef.Encode
	}
	data, err := encode(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	a.log.Info("converted", zap.String("from", in), zap.String("to", out), zap.Int("bytes", len(data)))
	return nil
}
