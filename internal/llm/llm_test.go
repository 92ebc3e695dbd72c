package llm

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNew(t *testing.T) {
	c, err := New(Settings{})
	require.NoError(t, err)
	assert.IsType(t, &Mock{}, c)

	_, err = New(Settings{Provider: "bogus"})
	assert.Error(t, err)

	_, err = New(Settings{Provider: ProviderOpenAI, Model: "gpt-4o-mini"})
	assert.Error(t, err, "api key is required")

	c, err = New(Settings{Provider: ProviderOpenAI, Model: "gpt-4o-mini", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, c)

	_, err = New(Settings{Provider: ProviderCompat, Model: "llama3"})
	assert.Error(t, err, "base url is required")

	c, err = New(Settings{Provider: ProviderCompat, Model: "llama3", BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.IsType(t, &Compat{}, c)
}

func TestMock_Deterministic(t *testing.T) {
	m := &Mock{}
	a, err := m.Complete(context.Background(), Prompt{User: "eco-friendly coffee roaster"})
	require.NoError(t, err)
	b, err := m.Complete(context.Background(), Prompt{User: "eco-friendly coffee roaster"})
	require.NoError(t, err)
	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, "mock", a.Model)
	assert.Positive(t, a.TokenCount)

	c, _ := m.Complete(context.Background(), Prompt{User: "neon gaming arena"})
	assert.NotEqual(t, a.Text, c.Text)
}

func TestMock_DesignShape(t *testing.T) {
	out, err := (&Mock{}).Complete(context.Background(), Prompt{User: "x"})
	require.NoError(t, err)

	body := strings.TrimSuffix(strings.TrimPrefix(out.Text, "```json\n"), "\n```")
	require.True(t, gjson.Valid(body))

	primary := gjson.Get(body, "colors.primary").Map()
	assert.Len(t, primary, 10)

	// lightness falls as the shade number rises
	keys := make([]string, 0, len(primary))
	for k := range primary {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return shadeIndex(keys[i]) < shadeIndex(keys[j]) })
	assert.Equal(t, "50", keys[0])
	assert.Equal(t, "900", keys[len(keys)-1])

	assert.NotEmpty(t, gjson.Get(body, "typography.headingFont").String())
	assert.Equal(t, int64(5), gjson.Get(body, "components.#").Int())
}

func TestMock_ResponseAndError(t *testing.T) {
	out, err := (&Mock{Response: "not json"}).Complete(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "not json", out.Text)

	boom := errors.New("boom")
	_, err = (&Mock{Err: boom}).Complete(context.Background(), Prompt{})
	assert.ErrorIs(t, err, boom)
}

func TestMock_DelayHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := (&Mock{Delay: time.Second}).Complete(ctx, Prompt{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func shadeIndex(k string) int {
	n, _ := strconv.Atoi(k)
	return n
}
