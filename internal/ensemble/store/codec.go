// Package store persists catalog snapshots as versioned, fingerprinted
// records in a file or an SQL table.
package store

import (
	"crypto/sha512"
	"encoding/hex"

	"github.com/anand-gl/jsoncanonicalizer"
	"github.com/golang/snappy"
	jsonitor "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/tansive/conductor/internal/catalog"
)

var json = jsonitor.ConfigCompatibleWithStandardLibrary

const RecordVersion = "v1"

type record struct {
	Version     string              `json:"version"`
	Fingerprint string              `json:"fingerprint"`
	Catalog     jsonitor.RawMessage `json:"catalog"`
}

// Fingerprint is the hex SHA-512 of the canonical JSON form of c.
func Fingerprint(c *catalog.Catalog) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return fingerprintJSON(data)
}

func fingerprintJSON(data []byte) (string, error) {
	canonical, err := jsoncanonicalizer.Transform(data)
	if err != nil {
		return "", err
	}
	sum := sha512.Sum512(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Encode renders c as a record, snappy compressed when compress is set.
func Encode(c *catalog.Catalog, compress bool) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, ErrStore.MsgErr("unable to encode catalog", err)
	}
	fp, err := fingerprintJSON(data)
	if err != nil {
		return nil, ErrStore.MsgErr("unable to fingerprint catalog", err)
	}
	b, err := json.Marshal(record{Version: RecordVersion, Fingerprint: fp, Catalog: data})
	if err != nil {
		return nil, ErrStore.MsgErr("unable to encode catalog record", err)
	}
	if compress {
		b = snappy.Encode(nil, b)
	}
	return b, nil
}

// Decode reads a record written by Encode, compressed or not, and returns
// the catalog after checking the record schema, the fingerprint and the
// catalog invariants.
func Decode(b []byte) (*catalog.Catalog, error) {
	if len(b) == 0 {
		return nil, ErrCorruptRecord.Msg("empty catalog record")
	}
	if b[0] != '{' {
		plain, err := snappy.Decode(nil, b)
		if err != nil {
			return nil, ErrCorruptRecord.MsgErr("unable to decompress catalog record", err)
		}
		b = plain
	}
	if !gjson.ValidBytes(b) {
		return nil, ErrCorruptRecord.Msg("catalog record is not valid json")
	}
	version := gjson.GetBytes(b, "version")
	if !version.Exists() {
		return nil, ErrUnsupportedVersion.Msg("catalog record has no version")
	}
	if version.String() != RecordVersion {
		return nil, ErrUnsupportedVersion.Msgf("unsupported catalog record version %q", version.String())
	}

	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, ErrCorruptRecord.MsgErr("unable to read catalog record", err)
	}
	if err := recordSchemaCompiled.Validate(doc); err != nil {
		return nil, ErrCorruptRecord.MsgErr("catalog record does not match schema", err)
	}

	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, ErrCorruptRecord.MsgErr("unable to read catalog record", err)
	}
	fp, err := fingerprintJSON(rec.Catalog)
	if err != nil {
		return nil, ErrCorruptRecord.MsgErr("unable to fingerprint catalog", err)
	}
	if fp != rec.Fingerprint {
		return nil, ErrFingerprintMismatch
	}

	c := catalog.New()
	if err := json.Unmarshal(rec.Catalog, c); err != nil {
		return nil, ErrCorruptRecord.MsgErr("unable to decode catalog", err)
	}
	if err := c.Validate(); err != nil {
		return nil, ErrCorruptRecord.MsgErr("persisted catalog is invalid", err)
	}
	return c, nil
}
