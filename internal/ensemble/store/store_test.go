package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"

	"github.com/tansive/conductor/internal/catalog"
	"github.com/tansive/conductor/internal/score"
)

const shopScore = `
NAMESPACE shop;
TABLE users UUID '11111111-1111-1111-1111-111111111111' (
    id INTEGER UID 1,
    email VARCHAR(255) UID 2,
    "Display Name" TEXT UID 3
);
TABLE orders UUID '22222222-2222-2222-2222-222222222222' ();
AUTHENTICATION_POLICY anon TYPE = anonymous;
AUTHORIZATION_POLICY owners permissive_expr = claims.role = 'owner' OR 1 = 1;
HTTP_HANDLER list_users POLICY owners AS $$SELECT * FROM users$$;
`

func shopCatalog(t *testing.T) *catalog.Catalog {
	c, err := score.LoadSource("shop.score", shopScore)
	require.NoError(t, err)
	return c
}

func TestEncodeDecode(t *testing.T) {
	c := shopCatalog(t)
	for _, compress := range []bool{false, true} {
		b, err := Encode(c, compress)
		require.NoError(t, err)
		if !compress {
			assert.Equal(t, byte('{'), b[0])
		}

		got, err := Decode(b)
		require.NoError(t, err)
		assert.True(t, c.Equal(got))
	}
}

func TestEncodeDecodeEmpty(t *testing.T) {
	b, err := Encode(catalog.New(), false)
	require.NoError(t, err)
	got, err := Decode(b)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestFingerprintIsStable(t *testing.T) {
	a, err := Fingerprint(shopCatalog(t))
	require.NoError(t, err)
	b, err := Fingerprint(shopCatalog(t))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 128)

	other := shopCatalog(t)
	delete(other.Namespaces["shop"].HttpHandlers, "list_users")
	c, err := Fingerprint(other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDecodeErrors(t *testing.T) {
	good, err := Encode(shopCatalog(t), false)
	require.NoError(t, err)
	fp, err := Fingerprint(shopCatalog(t))
	require.NoError(t, err)

	tampered := []byte(strings.Replace(string(good), `"Display Name"`, `"Shown Name"`, 1))
	forged, err := sjson.SetBytes(good, "fingerprint", strings.Repeat("0", 128))
	require.NoError(t, err)
	future, err := sjson.SetBytes(good, "version", "v2")
	require.NoError(t, err)
	unnamed, err := sjson.SetBytes(good, "catalog.namespaces.0.name", "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		input []byte
		err   error
	}{
		{"empty", nil, ErrCorruptRecord},
		{"not json", []byte("{nope"), ErrCorruptRecord},
		{"bad snappy", []byte("\xff\xff\xff"), ErrCorruptRecord},
		{"missing version", []byte(`{"catalog":{"namespaces":[]}}`), ErrUnsupportedVersion},
		{"future version", []byte(`{"version":"v2","fingerprint":"","catalog":{}}`), ErrUnsupportedVersion},
		{"schema violation", []byte(`{"version":"v1","fingerprint":"` + fp + `","catalog":{"namespaces":[{"name":""}]}}`), ErrCorruptRecord},
		{"fingerprint mismatch", tampered, ErrFingerprintMismatch},
		{"forged fingerprint", forged, ErrFingerprintMismatch},
		{"newer record", future, ErrUnsupportedVersion},
		{"unnamed namespace", unnamed, ErrCorruptRecord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, ErrStore)
		})
	}
}

func TestDecodeRejectsInvalidCatalog(t *testing.T) {
	c := shopCatalog(t)
	c.Namespaces["shop"].HttpHandlers["list_users"].Policy = "missing"
	b, err := Encode(c, false)
	require.NoError(t, err)

	_, err = Decode(b)
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assert.ErrorIs(t, err, catalog.ErrInvalidCatalog)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")
	s := NewFileStore(dir, true)

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	c := shopCatalog(t)
	require.NoError(t, s.Save(ctx, c))
	b, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	_, err = snappy.Decode(nil, b)
	assert.NoError(t, err)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, c.Equal(got))

	delete(c.Namespaces, "shop")
	require.NoError(t, s.Save(ctx, c))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSQLStoreSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "catalog.db")
	s, err := OpenSQLStore(ctx, DialectSQLite, dsn, false)
	require.NoError(t, err)
	defer s.Close()

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
	fp, err := s.Fingerprint(ctx)
	require.NoError(t, err)
	assert.Empty(t, fp)

	c := shopCatalog(t)
	require.NoError(t, s.Save(ctx, c))
	require.NoError(t, s.Save(ctx, c))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, c.Equal(got))

	want, err := Fingerprint(c)
	require.NoError(t, err)
	fp, err = s.Fingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, fp)
}

func TestOpenSQLStoreUnknownDialect(t *testing.T) {
	_, err := OpenSQLStore(context.Background(), Dialect("oracle"), "x", false)
	assert.ErrorIs(t, err, ErrStore)
}
