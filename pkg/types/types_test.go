package types

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func TestPublicKey(t *testing.T) {
	valid := "ed25519:99611c808ccb74402f0c80ea0b22cefe3b46a73abe1072c90687658d44dead75"

	pk, err := ParsePublicKey(valid)
	require.NoError(t, err)
	require.Equal(t, valid, pk.String())

	// one hex char short
	_, err = ParsePublicKey("ed25519:99611c808ccb74402f0c80ea0b22cefe3b46a73abe1072c90687658d44dead7")
	require.Error(t, err)

	// wrong prefix
	_, err = ParsePublicKey("foo:99611c808ccb74402f0c80ea0b22cefe3b46a73abe1072c90687658d44dead75")
	require.Error(t, err)
}

func TestHash(t *testing.T) {
	valid := "h:f78694e6db65d95389eb271a9239810701a7f1df199564f51b1fc6c1c7935d7c"

	h, err := ParseHash(valid)
	require.NoError(t, err)
	require.Equal(t, valid, h.String())

	_, err = ParseHash("h:f78694e6db65d95389eb271a9239810701a7f1df199564f51b1fc6c1c7935d")
	require.Error(t, err)

	_, err = ParseHash("foo:f78694e6db65d95389eb271a9239810701a7f1df199564f51b1fc6c1c7935d7c")
	require.Error(t, err)
}

func TestFileContractID(t *testing.T) {
	valid := "fcid:d41536902fedd6717e16839df5a6022c1d0663ebc2f44f8ad4a7bb743313dabd"

	id, err := ParseFileContractID(valid)
	require.NoError(t, err)
	require.Equal(t, valid, id.String())

	_, err = ParseFileContractID("fcid:f78694e6db65d95389eb271a9239810701a7f1df199564f51b1fc6c1c7935d")
	require.Error(t, err)

	_, err = ParseFileContractID("foo:d41536902fedd6717e16839df5a6022c1d0663ebc2f44f8ad4a7bb743313dabd")
	require.Error(t, err)
}

func TestSettingsID(t *testing.T) {
	valid := "defb754518682448a13b2e30fff7c2ae"

	id, err := ParseSettingsID(valid)
	require.NoError(t, err)
	require.Equal(t, valid, id.String())

	_, err = ParseSettingsID("defb754518682448a13b2e30fff7c2a")
	require.Error(t, err)
}

func TestPublicKeyJSONRoundTrip(t *testing.T) {
	pk, err := ParsePublicKey("ed25519:99611c808ccb74402f0c80ea0b22cefe3b46a73abe1072c90687658d44dead75")
	require.NoError(t, err)

	b, err := json.Marshal(map[PublicKey]float64{pk: 1.5})
	require.NoError(t, err)

	var m map[PublicKey]float64
	require.NoError(t, json.Unmarshal(b, &m))
	require.Equal(t, 1.5, m[pk])
}

func TestCurrency(t *testing.T) {
	c, err := ParseCurrency("150000000000000000000000000000")
	require.NoError(t, err)
	require.Equal(t, "150000000000000000000000000000", c.String())

	b, err := json.Marshal(c)
	require.NoError(t, err)
	require.Equal(t, `"150000000000000000000000000000"`, string(b))

	// bare numbers are accepted too
	var c2 Currency
	require.NoError(t, json.Unmarshal([]byte(`12345`), &c2))
	require.Equal(t, 0, c2.Cmp(NewCurrency(12345)))

	_, err = ParseCurrency("-1")
	require.Error(t, err)

	_, err = ParseCurrency("12.5")
	require.Error(t, err)
}

func TestStateJSON(t *testing.T) {
	blob := `{
		"startTime": "2023-09-21T08:25:18.542303234Z",
		"network": "Mainnet",
		"version": "v0.5.0-166-gaaf22529",
		"commit": "aaf22529",
		"os": "linux",
		"buildTime": "2023-09-20T14:03:05Z"
	}`

	var s State
	require.NoError(t, json.Unmarshal([]byte(blob), &s))
	require.Equal(t, "Mainnet", s.Network)
	require.Equal(t, "aaf22529", s.Commit)
	require.Equal(t, 2023, s.BuildTime.Year())
}
