package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/template"
)

// startDelegate runs a scripted shell delegate for the duration of a test.
func startDelegate(t *testing.T, script string) *Processor {
	t.Helper()
	proc, err := Start([]string{"sh", "-c", script})
	require.NoError(t, err)
	t.Cleanup(func() { _ = proc.Close() })
	return proc
}

func TestStart_NoCommand_NativeOnlyProcessor(t *testing.T) {
	proc, err := Start(nil)
	require.NoError(t, err)
	require.False(t, proc.Configured())
	require.NoError(t, proc.Close())
}

func TestSend_WellBehavedDelegate_RoundTrips(t *testing.T) {
	proc := startDelegate(t, `while read line; do echo '{"value":"substituted"}'; done`)
	require.True(t, proc.Configured())

	resolver := proc.For(EvaluationContext{Document: "a.md"}, "", "body")
	out, err := resolver.Resolve(template.Rule{Kind: template.RuleToc, Depth: 3})
	require.NoError(t, err)
	require.Equal(t, "substituted", out)
}

func TestSend_ResponsesReadInRequestOrder(t *testing.T) {
	proc := startDelegate(t, `n=0; while read line; do n=$((n+1)); echo "{\"value\":\"reply-$n\"}"; done`)

	resolver := proc.For(EvaluationContext{}, "", "")
	first, err := resolver.Resolve(template.Rule{Kind: template.RuleListing, Path: "posts"})
	require.NoError(t, err)
	second, err := resolver.Resolve(template.Rule{Kind: template.RuleInclude, Path: "nav.html"})
	require.NoError(t, err)
	require.Equal(t, "reply-1", first)
	require.Equal(t, "reply-2", second)
}

func TestSend_MalformedResponse_ProcessorError(t *testing.T) {
	proc := startDelegate(t, `while read line; do echo 'not json'; done`)

	resolver := proc.For(EvaluationContext{}, "", "")
	_, err := resolver.Resolve(template.Rule{Kind: template.RuleToc, Depth: 1})
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryProcessor))
	require.Contains(t, err.Error(), "malformed")
}

func TestSend_ResponseWithoutValue_ProcessorError(t *testing.T) {
	proc := startDelegate(t, `while read line; do echo '{}'; done`)

	resolver := proc.For(EvaluationContext{}, "", "")
	_, err := resolver.Resolve(template.Rule{Kind: template.RuleToc, Depth: 1})
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryProcessor))
	require.Contains(t, err.Error(), "missing the value field")
}

func TestSend_DelegateExits_ProcessorError(t *testing.T) {
	proc := startDelegate(t, `read line; exit 1`)

	resolver := proc.For(EvaluationContext{}, "", "")
	_, err := resolver.Resolve(template.Rule{Kind: template.RuleToc, Depth: 1})
	require.Error(t, err)
	require.True(t, sberrors.IsCategory(err, sberrors.CategoryProcessor))
}

func TestClose_WellBehavedDelegate_ExitsCleanly(t *testing.T) {
	proc, err := Start([]string{"cat"})
	require.NoError(t, err)
	require.NoError(t, proc.Close())
}

func TestResolve_DelegatedRuleWithoutDelegate_FailsFast(t *testing.T) {
	proc, err := Start(nil)
	require.NoError(t, err)
	defer proc.Close()

	resolver := proc.For(EvaluationContext{Document: "a.md"}, "", "")
	for _, rule := range []template.Rule{
		{Kind: template.RuleToc, Depth: 2},
		{Kind: template.RuleListing, Path: "posts"},
		{Kind: template.RuleInclude, Path: "nav.html"},
	} {
		_, err := resolver.Resolve(rule)
		require.Error(t, err)
		require.True(t, sberrors.IsCategory(err, sberrors.CategoryConfig))
	}
}
