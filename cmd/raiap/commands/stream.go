package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"raiap/internal/domain"
	"raiap/internal/protocol/profile"
	"raiap/internal/protocol/stream"
	"raiap/internal/store"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Work with pseudonymous profiles",
	}
	cmd.AddCommand(profileNewCmd())
	return cmd
}

func profileNewCmd() *cobra.Command {
	var (
		commit   []string
		disclose []string
		streamID string
	)
	cmd := &cobra.Command{
		Use:   "new <context> [key=value]...",
		Short: "Derive the profile for a context; with --stream, record a disclosure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			attrs, err := parseAttributes(args[1:])
			if err != nil {
				return err
			}
			sess, err := appCtx.Identity.Open(passphrase)
			if err != nil {
				return err
			}
			defer sess.Close()

			p, err := profile.New(sess.Card, sess.Evolution.Current().Index, args[0], attrs)
			if err != nil {
				return err
			}
			for _, k := range commit {
				if _, err := p.Commit(k); err != nil {
					return err
				}
			}
			fmt.Printf("Profile: %s\n", p.ID())
			for _, a := range p.Attributes() {
				if a.Committed() {
					fmt.Printf("  %s = commitment %s\n", a.Key, a.Commitment)
				} else {
					fmt.Printf("  %s = %s\n", a.Key, a.Value)
				}
			}
			if streamID == "" {
				return nil
			}

			d, err := p.Disclose(disclose...)
			if err != nil {
				return err
			}
			ev, err := p.Event(d)
			if err != nil {
				return err
			}
			a, err := appCtx.Stream.Record(cmd.Context(), domain.StreamID(streamID), p, ev, sess.Evolution.Signer())
			if err != nil {
				return err
			}
			if err := appCtx.Identity.Save(passphrase, sess); err != nil {
				return err
			}
			fmt.Printf("Disclosure anchored on %s: %s\n", streamID, a.Hash)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&commit, "commit", nil, "attribute keys to hide behind salted commitments")
	cmd.Flags().StringSliceVar(&disclose, "disclose", nil, "committed keys whose openings go in the disclosure")
	cmd.Flags().StringVar(&streamID, "stream", "", "stream to record the disclosure on")
	return cmd
}

func parseAttributes(pairs []string) (map[string][]byte, error) {
	attrs := make(map[string][]byte, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("attribute %q is not key=value", kv)
		}
		attrs[k] = []byte(v)
	}
	return attrs, nil
}

func anchorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anchor",
		Short: "Record signed events on streams",
	}
	cmd.AddCommand(anchorAppendCmd())
	return cmd
}

func anchorAppendCmd() *cobra.Command {
	var (
		context    string
		kind       string
		body       string
		supersedes string
	)
	cmd := &cobra.Command{
		Use:   "append [stream-id]",
		Short: "Sign an event with the active key and append it; without an ID a new stream is started",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			id := stream.NewID()
			if len(args) == 1 {
				id = domain.StreamID(args[0])
			}
			ek, err := domain.ParseEventKind(kind)
			if err != nil {
				return err
			}
			ev := domain.Event{Kind: ek, Body: []byte(body)}
			if supersedes != "" {
				if ev.Supersedes, err = domain.ParseDigest(supersedes); err != nil {
					return err
				}
				ev.Kind = domain.EventSupersede
			}

			sess, err := appCtx.Identity.Open(passphrase)
			if err != nil {
				return err
			}
			defer sess.Close()
			p, err := profile.New(sess.Card, sess.Evolution.Current().Index, context, nil)
			if err != nil {
				return err
			}
			a, err := appCtx.Stream.Record(cmd.Context(), id, p, ev, sess.Evolution.Signer())
			if err != nil {
				return err
			}
			if err := appCtx.Identity.Save(passphrase, sess); err != nil {
				return err
			}
			fmt.Printf("Stream: %s\nAnchor: %s\n", id, a.Hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&context, "context", "default", "disclosure context selecting the profile")
	cmd.Flags().StringVar(&kind, "kind", "claim", "event kind: disclosure, claim, attestation, grant or consent")
	cmd.Flags().StringVar(&body, "body", "", "opaque event body")
	cmd.Flags().StringVar(&supersedes, "supersedes", "", "hash of the anchor this event corrects")
	return cmd
}

// trustRoot builds a History from an export-public file, or from the local
// identity when path is empty.
func trustRoot(path string) (*stream.History, error) {
	var (
		state domain.EvolutionState
		err   error
	)
	if path != "" {
		state, err = readPublicState(path)
	} else {
		if err = requirePassphrase(); err != nil {
			return nil, fmt.Errorf("%w; or pass --trust", err)
		}
		state, err = appCtx.Identity.PublicState(passphrase)
	}
	if err != nil {
		return nil, err
	}
	return stream.NewHistory(state.Card, state.Generations)
}

func verifyCmd() *cobra.Command {
	var (
		trust string
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "verify [stream-id]",
		Short: "Verify a stream against the signer history of an identity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := trustRoot(trust)
			if err != nil {
				return err
			}
			if all {
				results, err := appCtx.Stream.VerifyAll(cmd.Context(), root)
				if err != nil {
					return err
				}
				failed := 0
				for id, verr := range results {
					if verr != nil {
						failed++
						fmt.Printf("%s  FAIL  %v\n", id, verr)
						continue
					}
					fmt.Printf("%s  ok\n", id)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d streams failed verification", failed, len(results))
				}
				return nil
			}
			if len(args) != 1 {
				return errors.New("stream id required (or --all)")
			}
			head, err := appCtx.Stream.Verify(cmd.Context(), domain.StreamID(args[0]), root)
			if err != nil {
				if pos, ok := domain.PositionOf(err); ok {
					return fmt.Errorf("invalid at position %d (%s): %w", pos, domain.KindOf(err), err)
				}
				return err
			}
			fmt.Printf("Valid. Head: %s\n", head)
			return nil
		},
	}
	cmd.Flags().StringVar(&trust, "trust", "", "export-public file of the signing identity (default: local identity)")
	cmd.Flags().BoolVar(&all, "all", false, "verify every stream in the store")
	return cmd
}

func forkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fork <stream-id> <archive>",
		Short: "Report where a stream and an archived copy diverge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			_, other, err := store.ReadArchive(f)
			if err != nil {
				return err
			}
			if err := appCtx.Stream.DetectFork(cmd.Context(), domain.StreamID(args[0]), other); err != nil {
				return err
			}
			fmt.Println("No fork.")
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <stream-id>",
		Short: "Write a stream as an xz-compressed archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = args[0] + ".raiap.xz"
			}
			f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
			if err != nil {
				return err
			}
			if err := appCtx.Stream.Export(cmd.Context(), domain.StreamID(args[0]), f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "archive path (default <stream-id>.raiap.xz)")
	return cmd
}

func importCmd() *cobra.Command {
	var trust string
	cmd := &cobra.Command{
		Use:   "import <archive>",
		Short: "Verify an archive and append what the local copy lacks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := trustRoot(trust)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			hdr, added, err := appCtx.Stream.Import(cmd.Context(), f, root)
			if err != nil {
				return err
			}
			fmt.Printf("Stream %s: %d anchors added (archive holds %d)\n", hdr.StreamID, added, hdr.Count)
			return nil
		},
	}
	cmd.Flags().StringVar(&trust, "trust", "", "export-public file of the signing identity (default: local identity)")
	return cmd
}
