package testintent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTestFileDetection(t *testing.T) {
	assert.True(t, IsTestFile("src/Auth.test.ts"))
	assert.True(t, IsTestFile("src/Auth.spec.ts"))
	assert.True(t, IsTestFile("src/auth_test.py"))
	assert.True(t, IsTestFile("TestAuth.java"))
	assert.True(t, IsTestFile("AuthTest.java"))
	assert.True(t, IsTestFile("AuthTests.java"))
	assert.True(t, IsTestFile("AuthSpec.kt"))
	assert.True(t, IsTestFile("src/__tests__/Auth.ts"))
	assert.True(t, IsTestFile("src/test/java/com/example/AuthTest.java"))
	assert.True(t, IsTestFile("test_auth.py"))
	assert.False(t, IsTestFile("src/Session.ts"))
	assert.False(t, IsTestFile("src/Auth.ts"))
}

// TestExtractionCapAndNonTestFile checks that seven "it(...)" blocks
// yield at most five titles, and that a non-test file extracts nothing.
func TestExtractionCapAndNonTestFile(t *testing.T) {
	content := `
describe("Auth", () => {
  it("logs in with valid credentials", () => {});
  it("rejects invalid password", () => {});
  it("refreshes expired token", () => {});
  it("locks account after failures", () => {});
  it("handles concurrent logins", () => {});
  it("clears session on logout", () => {});
  it("rate limits retry attempts", () => {});
});
`
	intents := Extract("src/Auth.test.ts", content)
	assert.LessOrEqual(t, len(intents), TestIntentsPerFile)
	assert.Len(t, intents, 5)

	assert.Empty(t, Extract("src/Session.ts", "export const x = 1;"))
}

func TestExtractGoTestNames(t *testing.T) {
	content := `
package foo

func TestHandlesExpiredToken(t *testing.T) {}
func TestRejectsInvalidHTTPHeader(t *testing.T) {}
`
	intents := Extract("foo_test.go", content)
	require.Len(t, intents, 2)
	assert.Equal(t, "handles expired token", intents[0].Title)
	assert.Equal(t, "rejects invalid HTTP header", intents[1].Title)
}

func TestExtractPythonTestNames(t *testing.T) {
	content := "def test_rejects_empty_payload():\n    pass\n"
	intents := Extract("test_handler.py", content)
	require.Len(t, intents, 1)
	assert.Equal(t, "rejects empty payload", intents[0].Title)
}

func TestExtractRustTestNames(t *testing.T) {
	content := "#[test]\nfn handles_overflow_gracefully() {}\n"
	intents := Extract("lib.rs", content)
	require.Len(t, intents, 1)
	assert.Equal(t, "handles overflow gracefully", intents[0].Title)
}

func TestUnrecognizedExtensionYieldsNoIntents(t *testing.T) {
	assert.Empty(t, Extract("README.md", "it(\"whatever\")"))
}

func TestExtractJavaTestNames(t *testing.T) {
	content := `
package com.example;

class AuthTest {
    @Test
    void rejectsInvalidPassword() {}

    @Test
    public void locksAccountAfterFailures() {}
}
`
	intents := Extract("AuthTest.java", content)
	require.Len(t, intents, 2)
	assert.Equal(t, "rejects invalid password", intents[0].Title)
	assert.Equal(t, "locks account after failures", intents[1].Title)
}

// TestExtractJavaDisplayNameOverridesMethodName checks that a
// @DisplayName directly above a @Test method is that method's title
// override, not an additional title: a file with three annotated
// methods and two plain ones must yield exactly five titles, not six
// truncated to five.
func TestExtractJavaDisplayNameOverridesMethodName(t *testing.T) {
	content := `
package com.example;

class AuthTest {
    @DisplayName("logs in with valid credentials")
    @Test
    void loginHappyPath() {}

    @DisplayName("rejects invalid password")
    @Test
    void rejectsInvalidPassword() {}

    @DisplayName("locks account after failures")
    @Test
    void locksAccountAfterFailures() {}

    @Test
    void refreshesExpiredToken() {}

    @Test
    void clearsSessionOnLogout() {}
}
`
	intents := Extract("AuthTest.java", content)
	require.Len(t, intents, 5)
	titles := make([]string, len(intents))
	for i, in := range intents {
		titles[i] = in.Title
	}
	assert.Equal(t, []string{
		"logs in with valid credentials",
		"rejects invalid password",
		"locks account after failures",
		"refreshes expired token",
		"clears session on logout",
	}, titles)
}

func TestExtractKotlinTestNames(t *testing.T) {
	content := "" +
		"class AuthSpec {\n" +
		"    @Test\n" +
		"    fun `rejects invalid password`() {}\n" +
		"\n" +
		"    fun handlesConcurrentLogins() {}\n" +
		"}\n"
	intents := Extract("AuthSpec.kt", content)
	require.Len(t, intents, 2)
	assert.Equal(t, "rejects invalid password", intents[0].Title)
	assert.Equal(t, "handles concurrent logins", intents[1].Title)
}

func TestExtractScalaTestNames(t *testing.T) {
	content := `
class AuthSpec extends AnyFlatSpec {
  "the login" should "reject an invalid password" in {}
  it should "lock the account after failures" in {}
}
`
	intents := Extract("AuthSpec.scala", content)
	require.Len(t, intents, 2)
	assert.Equal(t, "reject an invalid password", intents[0].Title)
	assert.Equal(t, "lock the account after failures", intents[1].Title)
}

// TestProactiveDiscovery checks that a JSX test file that never
// co-commits with its target is still discovered and surfaced with
// its titles and count.
func TestProactiveDiscovery(t *testing.T) {
	root := t.TempDir()
	testDir := filepath.Join(root, "src", "tools", "base64", "__tests__")
	require.NoError(t, os.MkdirAll(testDir, 0o755))
	content := `
it("encodes ascii text", () => {});
it("decodes padded input", () => {});
it("rejects malformed input", () => {});
`
	require.NoError(t, os.WriteFile(filepath.Join(testDir, "Base64Tool.test.tsx"), []byte(content), 0o644))

	e := New(root)
	found := e.Discover(context.Background(), "src/tools/base64/Base64Tool.tsx")

	require.Len(t, found, 1)
	assert.Equal(t, "src/tools/base64/__tests__/Base64Tool.test.tsx", found[0].Path)
	assert.Equal(t, 3, found[0].Count)
	assert.Len(t, found[0].Intents, 3)
}

func TestDiscoverCandidatesGoConvention(t *testing.T) {
	candidates := DiscoverCandidates("internal/risk/scorer.go")
	assert.Contains(t, candidates, "internal/risk/scorer_test.go")
}

func TestDiscoverCandidatesJVMConvention(t *testing.T) {
	candidates := DiscoverCandidates("src/main/java/com/example/Auth.java")
	assert.Contains(t, candidates, "src/test/java/com/example/Auth.java")
}
