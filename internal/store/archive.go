package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"

	"raiap/internal/domain"
)

const archiveFormat = "raiap-stream/1"

// ArchiveHeader is the first line of a stream archive.
type ArchiveHeader struct {
	Format    string           `json:"format"`
	StreamID  domain.StreamID  `json:"stream_id"`
	ProfileID domain.ProfileID `json:"profile_id,omitempty"`
	Count     int              `json:"count"`
	Head      domain.Digest    `json:"head"`
}

// WriteArchive writes an xz-compressed JSON-lines export: the header, then
// one anchor per line.
func WriteArchive(w io.Writer, id domain.StreamID, profile domain.ProfileID, anchors []domain.Anchor) error {
	zw, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(zw)
	hdr := ArchiveHeader{
		Format:    archiveFormat,
		StreamID:  id,
		ProfileID: profile,
		Count:     len(anchors),
		Head:      headOf(id, anchors),
	}
	if err := enc.Encode(hdr); err != nil {
		return err
	}
	for _, a := range anchors {
		if err := enc.Encode(a); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ReadArchive parses an archive written by WriteArchive. Only the framing is
// checked here; the anchors still need verifying against a trust root.
func ReadArchive(r io.Reader) (ArchiveHeader, []domain.Anchor, error) {
	zr, err := xz.NewReader(bufio.NewReader(r))
	if err != nil {
		return ArchiveHeader{}, nil, fmt.Errorf("open archive: %w", err)
	}
	dec := json.NewDecoder(zr)

	var hdr ArchiveHeader
	if err := dec.Decode(&hdr); err != nil {
		return ArchiveHeader{}, nil, fmt.Errorf("archive header: %w", err)
	}
	if hdr.Format != archiveFormat {
		return ArchiveHeader{}, nil, fmt.Errorf("unsupported archive format %q", hdr.Format)
	}
	if err := validStreamID(hdr.StreamID); err != nil {
		return ArchiveHeader{}, nil, err
	}

	if hdr.Count < 0 {
		return ArchiveHeader{}, nil, fmt.Errorf("archive count %d", hdr.Count)
	}
	anchors := make([]domain.Anchor, 0, min(hdr.Count, 1024))
	for i := 0; i < hdr.Count; i++ {
		var a domain.Anchor
		if err := dec.Decode(&a); err != nil {
			return ArchiveHeader{}, nil, fmt.Errorf("archive anchor %d: %w", i, err)
		}
		anchors = append(anchors, a)
	}
	if got := headOf(hdr.StreamID, anchors); got != hdr.Head {
		return ArchiveHeader{}, nil, fmt.Errorf("archive head %s, header says %s: %w", got, hdr.Head, domain.ErrHashMismatch)
	}
	return hdr, anchors, nil
}
