package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"raiap/internal/domain"
	"raiap/internal/store"
)

func sharesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shares",
		Short: "Manage threshold recovery shares",
	}
	cmd.AddCommand(sharesIssueCmd())
	return cmd
}

func sharesIssueCmd() *cobra.Command {
	var (
		threshold, total int
		outDir           string
		holderPass       string
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Split the active operational key into sealed share files, one per holder",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if holderPass == "" {
				return fmt.Errorf("--holder-passphrase required to seal share files")
			}
			if threshold == 0 {
				threshold = appCtx.Config.RecoveryThreshold
			}
			if total == 0 {
				total = appCtx.Config.RecoveryTotal
			}
			shares, err := appCtx.Identity.IssueRecoveryShares(cmd.Context(), passphrase, threshold, total)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o700); err != nil {
				return err
			}
			for _, s := range shares {
				path := filepath.Join(outDir, fmt.Sprintf("share-%d-of-%d.json", s.Share.Index, total))
				if err := store.WriteShareFile(path, holderPass, s); err != nil {
					return err
				}
				fmt.Println(path)
			}
			fmt.Printf("Issued %d-of-%d shares for generation %d (set %s)\n",
				threshold, total, shares[0].GenerationIndex, shares[0].SetID)
			return nil
		},
	}
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "shares needed to recover (default from config)")
	cmd.Flags().IntVarP(&total, "total", "n", 0, "shares to issue (default from config)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "shares", "directory for share files")
	cmd.Flags().StringVar(&holderPass, "holder-passphrase", "", "passphrase sealing each share file")
	return cmd
}

func recoverCmd() *cobra.Command {
	var (
		holderPass string
		publicPath string
	)
	cmd := &cobra.Command{
		Use:   "recover <share-file>...",
		Short: "Rebuild the frontier key from shares and install a recovery-authorized generation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			shares := make([]domain.RecoveryShare, 0, len(args))
			for _, path := range args {
				s, err := store.ReadShareFile(path, holderPass)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				shares = append(shares, s)
			}

			var (
				g   domain.Generation
				err error
			)
			if publicPath != "" {
				public, rerr := readPublicState(publicPath)
				if rerr != nil {
					return rerr
				}
				g, err = appCtx.Identity.RecoverLost(cmd.Context(), passphrase, public, shares)
			} else {
				g, err = appCtx.Identity.Recover(cmd.Context(), passphrase, shares)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Recovered: generation %d active, generation %d marked compromised\n", g.Index, g.Index-1)
			return nil
		},
	}
	cmd.Flags().StringVar(&holderPass, "holder-passphrase", "", "passphrase the share files were sealed with")
	cmd.Flags().StringVar(&publicPath, "public", "", "rebuild from an export-public file when the local key is lost")
	return cmd
}
