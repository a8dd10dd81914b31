package input

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/webdata/wdk"
	"github.com/webdata/wdk/test"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(in *Input)
		err   string
	}{
		{name: "path", setup: func(in *Input) { in.Path = "/in" }},
		{name: "bucket", setup: func(in *Input) { in.Bucket = "b" }},
		{name: "kafka", setup: func(in *Input) { in.KafkaHosts = []string{"localhost:9092"} }},
		{name: "none", setup: func(in *Input) {}, err: "exactly one"},
		{name: "two", setup: func(in *Input) { in.Path, in.Bucket = "/in", "b" }, err: "exactly one"},
		{name: "no topics", setup: func(in *Input) {
			in.KafkaHosts = []string{"localhost:9092"}
			in.Topics = nil
		}, err: "at least one topic"},
		{name: "empty topic", setup: func(in *Input) {
			in.KafkaHosts = []string{"localhost:9092"}
			in.Topics = []string{""}
		}, err: "must not be empty"},
		{name: "concurrency", setup: func(in *Input) {
			in.Path = "/in"
			in.Concurrency = 0
		}, err: "concurrency"},
		{name: "capacity", setup: func(in *Input) {
			in.Path = "/in"
			in.Capacity = wdk.MinCapacity - 1
		}, err: "capacity"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := NewInput()
			tc.setup(&in)
			err := in.validate()
			if tc.err == "" {
				test.ErrNil(t, err, "validate")
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.err) {
				t.Fatalf("expected error containing %q, got %v", tc.err, err)
			}
		})
	}
}

func TestSetupAndWriteJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.MemFile(t, fs, "/in/a.nq", "<http://ex/1> <http://schema.org/name> \"x\" .\n")
	out := &bytes.Buffer{}
	in := NewInput()
	in.Fs, in.Out = fs, out
	in.Path = "/in"
	test.ErrNil(t, in.Setup(), "setup")
	defer in.Close()

	test.ErrNil(t, in.WriteJSON(map[string]int{"a": 1}), "writing json")
	test.MustBe(t, "{\n  \"a\": 1\n}\n", out.String())

	in.Output = "/report.json"
	test.ErrNil(t, in.WriteJSON([]int{1}), "writing json file")
	data, err := afero.ReadFile(fs, "/report.json")
	test.ErrNil(t, err, "reading report")
	test.MustBe(t, "[\n  1\n]\n", string(data))
}
