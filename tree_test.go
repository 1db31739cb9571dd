package formskema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	fs "github.com/reoring/formskema"
)

func sampleTrees() []fs.Tree {
	return []fs.Tree{
		{},
		{"name": fs.List{fs.Message("a")}},
		{"name": fs.List{fs.Message("a"), fs.Message("b")}, "age": fs.List{fs.Message("c")}},
		{"owners": fs.List{nil, fs.Tree{"name": fs.List{fs.Message("required")}}}},
		{"address": fs.List{fs.Tree{"city": fs.List{fs.Message("x")}}, fs.Message("required")}},
	}
}

func TestMergeTrees_Identity(t *testing.T) {
	for _, tree := range sampleTrees() {
		if d := cmp.Diff(tree, fs.MergeTrees(tree, fs.Tree{})); d != "" {
			t.Fatalf("merge(x, {}) != x (-want +got):\n%s", d)
		}
		if d := cmp.Diff(tree, fs.MergeTrees(fs.Tree{}, tree)); d != "" {
			t.Fatalf("merge({}, x) != x (-want +got):\n%s", d)
		}
		assert.Len(t, fs.MergeTrees(nil, tree), len(tree))
	}
}

func TestMergeTrees_UnionAndConcat(t *testing.T) {
	a := fs.Tree{"name": fs.List{fs.Message("not a String")}, "age": fs.List{fs.Message("not a Number")}}
	b := fs.Tree{"name": fs.List{fs.Message("custom")}, "tags": fs.List{nil, fs.Message("bad")}}

	got := fs.MergeTrees(a, b)
	want := fs.Tree{
		"name": fs.List{fs.Message("not a String"), fs.Message("custom")},
		"age":  fs.List{fs.Message("not a Number")},
		"tags": fs.List{nil, fs.Message("bad")},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("(-want +got):\n%s", d)
	}
	// inputs are not modified
	assert.Len(t, a["name"], 1)
	assert.Len(t, b["name"], 1)
}

func TestMergeLists_MessagesAssociative(t *testing.T) {
	x := fs.List{fs.Message("1")}
	y := fs.List{fs.Message("2"), fs.Message("3")}
	z := fs.List{fs.Message("4")}

	left := fs.MergeLists(fs.MergeLists(x, y), z)
	right := fs.MergeLists(x, fs.MergeLists(y, z))
	if d := cmp.Diff(left, right); d != "" {
		t.Fatalf("not associative (-left +right):\n%s", d)
	}
	assert.Len(t, left, 4)
}

func TestMergeLists_PerIndex(t *testing.T) {
	a := fs.List{nil, fs.Tree{"name": fs.List{fs.Message("x")}}}
	b := fs.List{fs.Tree{"sku": fs.List{fs.Message("y")}}, fs.Tree{"email": fs.List{fs.Message("z")}}, nil, fs.Message("w")}

	got := fs.MergeLists(a, b)
	want := fs.List{
		fs.Tree{"sku": fs.List{fs.Message("y")}},
		fs.Tree{"name": fs.List{fs.Message("x")}, "email": fs.List{fs.Message("z")}},
		nil,
		fs.Message("w"),
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("(-want +got):\n%s", d)
	}
}

func TestMergeLists_KeepsIndexes(t *testing.T) {
	current := fs.List{fs.Message("foo 1"), nil, fs.Message("foo 3"), nil, nil}
	next := fs.List{fs.Message("bar 1"), nil, nil, fs.Message("bar 4")}

	got := fs.MergeLists(current, next)
	want := fs.List{fs.Message("bar 1"), nil, fs.Message("foo 3"), fs.Message("bar 4")}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("(-want +got):\n%s", d)
	}
}

func TestMergeLists_LaterEntryWinsOverOtherKinds(t *testing.T) {
	tree := fs.Tree{"name": fs.List{fs.Message("x")}}
	assert.Equal(t, fs.List{nil, fs.Message("m")}, fs.MergeLists(fs.List{nil, tree}, fs.List{nil, fs.Message("m")}))
	assert.Equal(t, fs.List{nil, tree}, fs.MergeLists(fs.List{nil, fs.Message("m")}, fs.List{nil, tree}))
	assert.Nil(t, fs.MergeLists(fs.List{nil}, fs.List{nil, nil}))
}

func TestMergeLists_SameIndexTreesShallow(t *testing.T) {
	a := fs.List{nil, fs.Tree{"name": fs.List{fs.Message("err")}}}
	got := fs.MergeLists(a, a)
	if d := cmp.Diff(a, got); d != "" {
		t.Fatalf("re-injecting the same tree must not duplicate (-want +got):\n%s", d)
	}
}

func TestMerge_Entries(t *testing.T) {
	assert.Nil(t, fs.Merge(nil, fs.Tree{}))
	assert.Equal(t, fs.Message("a"), fs.Merge(fs.Message("a"), nil))
	assert.Equal(t, fs.List{fs.Message("a"), fs.Message("b")}, fs.Merge(fs.Message("a"), fs.Message("b")))

	tree := fs.Tree{"k": fs.List{fs.Message("t")}}
	assert.Equal(t, fs.List{tree, fs.Message("m")}, fs.Merge(tree, fs.Message("m")))

	other := fs.Tree{"j": fs.List{fs.Message("u")}}
	assert.Equal(t,
		fs.List{fs.Message("m"), fs.Tree{"k": fs.List{fs.Message("t")}, "j": fs.List{fs.Message("u")}}, fs.Message("n")},
		fs.Merge(fs.List{fs.Message("m"), tree}, fs.List{other, fs.Message("n")}))
}

func TestMerge_EntriesAssociative(t *testing.T) {
	samples := []fs.Entry{
		nil,
		fs.Message("a"),
		fs.Message("b"),
		fs.List{fs.Message("c"), fs.Message("d")},
		fs.Tree{"name": fs.List{fs.Message("t1")}},
		fs.Tree{"name": fs.List{fs.Message("t2")}, "age": fs.List{fs.Message("t3")}},
		fs.List{fs.Message("e"), fs.Tree{"sku": fs.List{fs.Message("t4")}}},
		fs.List{fs.Tree{"email": fs.List{fs.Message("t5")}}, fs.List{fs.Message("f")}},
	}
	for i, x := range samples {
		for j, y := range samples {
			for k, z := range samples {
				left := fs.Merge(fs.Merge(x, y), z)
				right := fs.Merge(x, fs.Merge(y, z))
				if d := cmp.Diff(left, right); d != "" {
					t.Fatalf("merge of samples %d, %d, %d depends on grouping (-left +right):\n%s", i, j, k, d)
				}
			}
		}
	}
}

func TestTree_JSON(t *testing.T) {
	tree := fs.Tree{
		"tags":    fs.List{nil, fs.Message("bad")},
		"address": fs.List{fs.Tree{"city": fs.List{fs.Message("required")}}},
	}
	b, err := tree.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `{"tags":[null,"bad"],"address":[{"city":["required"]}]}`, string(b))
}

func TestTree_HasAndKeys(t *testing.T) {
	tree := fs.Tree{"b": fs.List{fs.Message("x")}, "a": fs.List{nil}}
	assert.True(t, tree.Has("b"))
	assert.False(t, tree.Has("a"))
	assert.False(t, tree.Has("missing"))
	assert.Equal(t, []string{"a", "b"}, tree.Keys())
}
