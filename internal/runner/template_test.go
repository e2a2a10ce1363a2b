package runner

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type templateInner struct {
	Path string `template:""`
}

type templateFixture struct {
	Tagged      string            `template:""`
	Untagged    string
	Skipped     string            `template:"-"`
	Ptr         *string           `template:""`
	NilPtr      *string           `template:""`
	List        []string          `template:""`
	UntaggedSet []string
	Headers     map[string]string
	Counts      map[string]int
	Inner       templateInner
	InnerPtr    *templateInner
	NilInner    *templateInner
	Items       []templateInner
	ItemPtrs    []*templateInner
	hidden      string `template:""`
}

func TestExpandTemplates(t *testing.T) {
	vars := map[string]string{"JOB_NAME": "nightly", "BUCKET": "dumps"}

	in := templateFixture{
		Tagged:      "${JOB_NAME}.tar.xz",
		Untagged:    "${JOB_NAME}",
		Skipped:     "${JOB_NAME}",
		Ptr:         lo.ToPtr("s3://${BUCKET}"),
		List:        []string{"${JOB_NAME}", "static"},
		UntaggedSet: []string{"${JOB_NAME}"},
		Headers:     map[string]string{"X-Job": "${JOB_NAME}"},
		Counts:      map[string]int{"k": 1},
		Inner:       templateInner{Path: "${BUCKET}/a"},
		InnerPtr:    &templateInner{Path: "${BUCKET}/b"},
		Items:       []templateInner{{Path: "${JOB_NAME}-1"}},
		ItemPtrs:    []*templateInner{{Path: "${JOB_NAME}-2"}, nil},
		hidden:      "${JOB_NAME}",
	}

	require.NoError(t, ExpandTemplates(&in, vars))

	assert.Equal(t, "nightly.tar.xz", in.Tagged)
	assert.Equal(t, "${JOB_NAME}", in.Untagged)
	assert.Equal(t, "${JOB_NAME}", in.Skipped)
	assert.Equal(t, "s3://dumps", *in.Ptr)
	assert.Nil(t, in.NilPtr)
	assert.Equal(t, []string{"nightly", "static"}, in.List)
	assert.Equal(t, []string{"${JOB_NAME}"}, in.UntaggedSet)
	assert.Equal(t, map[string]string{"X-Job": "nightly"}, in.Headers)
	assert.Equal(t, map[string]int{"k": 1}, in.Counts)
	assert.Equal(t, "dumps/a", in.Inner.Path)
	assert.Equal(t, "dumps/b", in.InnerPtr.Path)
	assert.Nil(t, in.NilInner)
	assert.Equal(t, "nightly-1", in.Items[0].Path)
	assert.Equal(t, "nightly-2", in.ItemPtrs[0].Path)
	assert.Nil(t, in.ItemPtrs[1])
	assert.Equal(t, "${JOB_NAME}", in.hidden)
}

func TestExpandTemplates_TopLevelSlice(t *testing.T) {
	in := []templateInner{{Path: "${X}"}, {Path: "plain"}}
	require.NoError(t, ExpandTemplates(&in, map[string]string{"X": "expanded"}))
	assert.Equal(t, []templateInner{{Path: "expanded"}, {Path: "plain"}}, in)
}

func TestExpandTemplates_NilAndInvalidInput(t *testing.T) {
	var nilStruct *templateInner
	assert.NoError(t, ExpandTemplates(nilStruct, nil))

	n := 3
	assert.ErrorContains(t, ExpandTemplates(&n, nil), "expected a struct or a slice")
}

func TestExpandTemplates_MissingVariableNamesField(t *testing.T) {
	in := templateFixture{Inner: templateInner{Path: "${MISSING}"}}

	err := ExpandTemplates(&in, map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Inner: Path:")
	assert.Contains(t, err.Error(), `"MISSING"`)
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		variables  map[string]string
		want       string
		errContain string
	}{
		{
			name:  "no variables",
			value: "plain-text",
			want:  "plain-text",
		},
		{
			name:      "braced variable",
			value:     "${JOB_NAME}",
			variables: map[string]string{"JOB_NAME": "nightly"},
			want:      "nightly",
		},
		{
			name:      "short form",
			value:     "$PLAIN",
			variables: map[string]string{"PLAIN": "value"},
			want:      "value",
		},
		{
			name:  "path pattern",
			value: "${JOB_NAME}/${JOB_DATE_ISO8601}/archive.tar.xz",
			variables: map[string]string{
				"JOB_NAME":         "nightly",
				"JOB_DATE_ISO8601": "20261019T103000Z",
			},
			want: "nightly/20261019T103000Z/archive.tar.xz",
		},
		{
			name:  "escaped dollar",
			value: "cost: $$5",
			want:  "cost: $5",
		},
		{
			name:       "variable outside the allowed list",
			value:      "${SECRET_KEY}",
			variables:  map[string]string{"OTHER": "value"},
			errContain: `environment variable "SECRET_KEY" is not in the allowed list`,
		},
		{
			name:       "every missing variable is reported",
			value:      "${FIRST}${SECOND}",
			errContain: `"SECOND"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Expand(tt.value, tt.variables)

			if tt.errContain != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandMap(t *testing.T) {
	tests := []struct {
		name       string
		values     map[string]string
		variables  map[string]string
		want       map[string]string
		errContain string
	}{
		{
			name: "nil map",
		},
		{
			name:   "empty map",
			values: map[string]string{},
			want:   map[string]string{},
		},
		{
			name:      "values expanded",
			values:    map[string]string{"Authorization": "Bearer ${TOKEN}", "Accept": "*/*"},
			variables: map[string]string{"TOKEN": "abc123"},
			want:      map[string]string{"Authorization": "Bearer abc123", "Accept": "*/*"},
		},
		{
			name:       "failing key is named",
			values:     map[string]string{"Good": "plain", "Bad": "${NOT_ALLOWED}"},
			errContain: "Bad: environment variable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandMap(tt.values, tt.variables)

			if tt.errContain != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContain)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
