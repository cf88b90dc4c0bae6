package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-certified-backend/internal/artifacts"
	"github.com/tbourn/go-certified-backend/internal/canon"
	"github.com/tbourn/go-certified-backend/internal/domain"
	"github.com/tbourn/go-certified-backend/internal/keys"
	"github.com/tbourn/go-certified-backend/internal/services"
)

// execute runs rootCmd with args after resetting every flag, so tests do
// not leak flag state into each other.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		resetFlags(c)
	}
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"keygen", "canon", "lock", "verify"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestKeygenCmd_JSON(t *testing.T) {
	out, err := execute(t, "", "keygen")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ed25519", got["algorithm"])

	_, err = keys.ParsePair(got["publicKey"], got["privateKey"])
	assert.NoError(t, err, "generated keys should form a matching pair")
}

func TestKeygenCmd_Env(t *testing.T) {
	out, err := execute(t, "", "keygen", "--env")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "CERT_SIGN_PUBLIC_KEY="))
	assert.True(t, strings.HasPrefix(lines[1], "CERT_SIGN_PRIVATE_KEY="))
}

func TestCanonCmd(t *testing.T) {
	p := writeFile(t, "doc.json", "{\n  \"b\": 1,\n  \"a\": [true, null]\n}\n")

	out, err := execute(t, "", "canon", p)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[true,null],"b":1}`, strings.TrimSpace(out))

	out, err = execute(t, "", "canon", "--sha256", p)
	require.NoError(t, err)
	assert.Equal(t, canon.SHA256Hex(`{"a":[true,null],"b":1}`), strings.TrimSpace(out))
}

func TestCanonCmd_Stdin(t *testing.T) {
	out, err := execute(t, `{"z":0,"y":"x"}`, "canon", "-")
	require.NoError(t, err)
	assert.Equal(t, `{"y":"x","z":0}`, strings.TrimSpace(out))
}

func TestCanonCmd_Errors(t *testing.T) {
	_, err := execute(t, "", "canon")
	assert.Error(t, err)

	_, err = execute(t, "", "canon", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = execute(t, `{"a":`, "canon", "-")
	assert.Error(t, err)
}

func TestLockCmd(t *testing.T) {
	plan := domain.PlanDraft{
		Title: "Photosynthesis",
		Items: []domain.PlanItem{
			{ID: "c1", Type: domain.ItemTypeCard, Front: "What is it?", Back: "Light to sugar."},
			{ID: "c2", Type: domain.ItemTypeCard, Front: "Where?", Back: "Chloroplasts."},
		},
	}
	want, err := canon.ComputeLock(plan)
	require.NoError(t, err)

	raw, err := json.MarshalIndent(plan, "", "    ")
	require.NoError(t, err)
	out, err := execute(t, "", "lock", writeFile(t, "plan.json", string(raw)))
	require.NoError(t, err)

	var got domain.Lock
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, want, got)
	assert.Equal(t, "sha256", got.Algo)
	assert.Len(t, got.Hash, 64)
}

func TestLockCmd_RejectsInvalidPlan(t *testing.T) {
	_, err := execute(t, "", "lock", writeFile(t, "plan.json", `{"title":"t","items":[]}`))
	assert.Error(t, err)

	dup := `{"title":"t","items":[{"id":"a","type":"card","front":"f","back":"b"},{"id":"a","type":"card","front":"f","back":"b"}]}`
	_, err = execute(t, "", "lock", writeFile(t, "plan.json", dup))
	assert.Error(t, err)
}

// signedArtifact builds and signs an artifact with a fresh key pair.
func signedArtifact(t *testing.T) (artifacts.Signed, string) {
	t.Helper()
	pub, priv, err := keys.Generate()
	require.NoError(t, err)
	ks := keys.NewKeyStore(keys.Config{Mode: keys.ModeProduction, PublicKey: pub, PrivateKey: priv})
	_, err = ks.Load()
	require.NoError(t, err)

	src := "https://example.org/source"
	a, err := artifacts.Build("a-1", "it-1", &src, strings.Repeat("ab", 32), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	signed, err := artifacts.Sign(a, ks)
	require.NoError(t, err)
	return signed, pub
}

func TestVerifyCmd_OK(t *testing.T) {
	signed, pub := signedArtifact(t)

	// Reformatted body still verifies.
	var doc map[string]any
	require.NoError(t, json.Unmarshal(signed.Body, &doc))
	pretty, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)

	artifactPath := writeFile(t, "artifact.json", string(pretty))
	sigPath := writeFile(t, "artifact.sig.b64", signed.Signature+"\n")

	out, err := execute(t, "", "verify", "--artifact", artifactPath, "--signature", sigPath, "--pubkey", pub)
	require.NoError(t, err)

	var res services.VerifyResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.OK)
	assert.Equal(t, signed.Artifact.SHA256, res.SHA256)
}

func TestVerifyCmd_Tampered(t *testing.T) {
	signed, pub := signedArtifact(t)
	tampered := strings.Replace(string(signed.Body), `"itemId":"it-1"`, `"itemId":"it-2"`, 1)
	require.NotEqual(t, string(signed.Body), tampered)

	out, err := execute(t, "", "verify", "-a", writeFile(t, "a.json", tampered), "-s", signed.Signature, "-k", pub)
	assert.ErrorIs(t, err, errVerifyFailed)

	var res services.VerifyResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.OK)
	assert.Equal(t, services.ReasonSignatureInvalid, res.Reason)
}

func TestVerifyCmd_WrongKey(t *testing.T) {
	signed, _ := signedArtifact(t)
	otherPub, _, err := keys.Generate()
	require.NoError(t, err)

	_, err = execute(t, "", "verify", "-a", writeFile(t, "a.json", string(signed.Body)), "-s", signed.Signature, "-k", otherPub)
	assert.ErrorIs(t, err, errVerifyFailed)
}

func TestVerifyCmd_InputErrors(t *testing.T) {
	signed, pub := signedArtifact(t)
	artifactPath := writeFile(t, "a.json", string(signed.Body))

	_, err := execute(t, "", "verify", "-a", artifactPath, "-s", signed.Signature, "-k", "not-a-key")
	assert.ErrorIs(t, err, keys.ErrMalformedKey)

	_, err = execute(t, "", "verify", "-a", writeFile(t, "list.json", `[1,2]`), "-s", signed.Signature, "-k", pub)
	assert.ErrorIs(t, err, services.ErrInvalidArtifact)

	_, err = execute(t, "", "verify", "-a", artifactPath, "-s", signed.Signature)
	assert.Error(t, err, "pubkey flag is required")
}
