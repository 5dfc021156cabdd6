package store

import (
	"database/sql"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"gallery/internal/match"
)

var snapshotEnc cbor.EncMode

func init() {
	var err error
	snapshotEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// EncodeSnapshot encodes a final match snapshot as deterministic CBOR
func EncodeSnapshot(snap match.Snapshot) ([]byte, error) {
	b, err := snapshotEnc.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot reverses EncodeSnapshot
func DecodeSnapshot(b []byte) (*match.Snapshot, error) {
	var snap match.Snapshot
	if err := cbor.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// GetSnapshot returns the final snapshot stored with a match
func (s *Store) GetSnapshot(matchID string) (*match.Snapshot, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT snapshot FROM matches WHERE id = ?`, matchID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, ErrNotFound
	}
	return DecodeSnapshot(blob)
}
