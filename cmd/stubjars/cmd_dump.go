package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dmssargent/StubJars/config"
	"github.com/dmssargent/StubJars/format"
	"github.com/dmssargent/StubJars/stub"
)

func newDumpCmd() *cobra.Command {
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <archive> <class>",
		Short: "Print the stub or the descriptor of one class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg, args[:1])
			if err != nil {
				return err
			}
			class, err := cat.Lookup(className(args[1]))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dumpFormat == "stub" {
				text, err := stub.NewClassEmitter(cat, stub.NewMemberPolicy(cat)).EmitFile(class)
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, text)
				return err
			}

			enc, err := format.NewEncoder(dumpFormat, out)
			if err != nil {
				return err
			}
			return enc.Encode(class)
		},
	}

	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "stub", "output format (stub, json, yaml, line)")
	cmd.Flags().String("classpath", "", "reference archives, separated by the path list separator")

	return cmd
}
