package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qdeck/circuit"
	"qdeck/engine"
	"qdeck/qasm"
)

func newQASMCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "qasm -f FILE",
		Short: "Print the OpenQASM 2.0 serialization of a circuit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := loadRequest(file)
			if err != nil {
				return err
			}
			c, err := circuit.BuildRaw(req.NumQubits, req.Gates)
			if err != nil {
				return err
			}
			if err := engine.New(a.cfg.Engine()).Admit(c.NumQubits()); err != nil {
				return err
			}
			a.log.Debug("serializing", zap.Int("qubits", c.NumQubits()), zap.Int("gates", c.Len()))
			_, err = fmt.Fprint(cmd.OutOrStdout(), qasm.Serialize(c))
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request (.json, .yaml) or circuit (.qasm) file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
