package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/beltline/internal/ir"
)

// HandleView is the JSON form of a decoded handle.
type HandleView struct {
	ID        ir.HandleID  `json:"id"`
	Direction ir.Direction `json:"direction"`
	Form      ir.Form      `json:"form"`
	PortType  ir.PortType  `json:"portType"`
	Slot      int          `json:"slot"`
}

func viewOf(h ir.Handle) HandleView {
	return HandleView{ID: h.ID(), Direction: h.Direction, Form: h.Form, PortType: h.PortType, Slot: h.Slot}
}

// NewHandleCommand creates the handle command with its encode and decode
// subcommands.
func NewHandleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handle",
		Short: "Encode and decode handle identifiers",
	}
	cmd.AddCommand(newHandleEncodeCommand(rootOpts))
	cmd.AddCommand(newHandleDecodeCommand(rootOpts))
	return cmd
}

func newHandleEncodeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <direction> <form> <portType> <slot>",
		Short: "Build a canonical handle identifier",
		Example: `  beltline handle encode left solid in 0
  beltline handle encode right fluid out 1 --format json`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			slot, err := strconv.Atoi(args[3])
			if err != nil {
				return f.fail(ExitCommandError, ErrCodeBadHandle, fmt.Sprintf("slot %q is not an integer", args[3]), nil)
			}
			id := ir.EncodeHandle(ir.Direction(args[0]), ir.Form(args[1]), ir.PortType(args[2]), slot)
			return reportHandle(f, id)
		},
	}
}

func newHandleDecodeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "decode <handle-id>",
		Short:   "Validate and split a handle identifier",
		Example: `  beltline handle decode top-solid-out-2`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return reportHandle(f, ir.HandleID(args[0]))
		},
	}
}

// reportHandle validates id and prints its parts.
func reportHandle(f *OutputFormatter, id ir.HandleID) error {
	h, err := ir.DecodeHandle(id, true)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeBadHandle, "malformed handle", err)
	}
	view := viewOf(h)
	return f.Report("", view, nil, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n  direction: %s\n  form:      %s\n  port:      %s\n  slot:      %d\n",
			view.ID, view.Direction, view.Form, view.PortType, view.Slot)
	})
}
