package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"raiap/internal/domain"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the identity card and generation 0, stored under the passphrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			rec, fp, err := appCtx.Identity.CreateIdentity(cmd.Context(), passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Identity created.\nIdentity:    %s\nFingerprint: %s\n", rec.IdentityID, fp)
			return nil
		},
	}
}

func fingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the master key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			fp, err := appCtx.Identity.Fingerprint(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Fingerprint: %s\n", fp)
			return nil
		},
	}
}

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Replace the operational key; the previous generation is revoked",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			g, err := appCtx.Identity.Rotate(cmd.Context(), passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Generation %d active from %s\n", g.Index, g.ActivatedAt.Time())
			return nil
		},
	}
}

func generationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generations",
		Short: "List generations with status and activation time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			state, err := appCtx.Identity.PublicState(passphrase)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tSTATUS\tAUTHORITY\tACTIVATED\tKEY\tSHARES")
			for _, g := range state.Generations {
				shares := "-"
				if g.ShareSet != nil {
					shares = fmt.Sprintf("%d-of-%d", g.ShareSet.Threshold, g.ShareSet.Total)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					g.Index, g.Status, g.Authority, g.ActivatedAt.Time(), g.OperationalKey, shares)
			}
			return tw.Flush()
		},
	}
}

func exportPublicCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-public",
		Short: "Write the card record and generations for verifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			state, err := appCtx.Identity.PublicState(passphrase)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = os.Stdout.Write(append(b, '\n'))
				return err
			}
			return os.WriteFile(out, b, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

// readPublicState loads a file written by export-public.
func readPublicState(path string) (domain.EvolutionState, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.EvolutionState{}, err
	}
	var state domain.EvolutionState
	if err := json.Unmarshal(b, &state); err != nil {
		return domain.EvolutionState{}, fmt.Errorf("parse public state %s: %w", path, err)
	}
	state.ActiveKey = domain.PrivateKey{}
	return state, nil
}
