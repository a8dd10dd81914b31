package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/webdata/wdk/test"
)

func TestSubcommands(t *testing.T) {
	rc := NewRootCommand(os.Stdin, &bytes.Buffer{}, &bytes.Buffer{})
	var names []string
	for _, c := range rc.Commands() {
		names = append(names, c.Name())
	}
	test.MustBe(t, []string{"cooc", "entitystats", "pagestat", "publish", "stats", "table"}, names)
}

func TestSetAllConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "wdkcmd")
	test.ErrNil(t, err, "getting temp dir")
	defer os.RemoveAll(dir)
	conf := filepath.Join(dir, "wdk.toml")
	err = ioutil.WriteFile(conf, []byte("capacity = 50\nkafka-hosts = [\"k1:9092\", \"k2:9092\"]\ntopk = 7\n"), 0644)
	test.ErrNil(t, err, "writing config")

	var capacity, topk, concurrency int
	var hosts []string
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.IntVar(&capacity, "capacity", 100, "")
	flags.IntVar(&topk, "topk", 1000, "")
	flags.IntVar(&concurrency, "concurrency", 1, "")
	flags.StringSliceVar(&hosts, "kafka-hosts", nil, "")
	test.ErrNil(t, flags.Parse([]string{"--config", conf, "--topk", "9"}), "parsing flags")

	os.Setenv("WDKTEST_CONCURRENCY", "4")
	os.Setenv("WDKTEST_TOPK", "8")
	defer os.Unsetenv("WDKTEST_CONCURRENCY")
	defer os.Unsetenv("WDKTEST_TOPK")

	test.ErrNil(t, setAllConfig(viper.New(), flags, "WDKTEST"), "setting config")
	test.MustBe(t, 50, capacity, "config file")
	test.MustBe(t, 9, topk, "flag beats env and config file")
	test.MustBe(t, 4, concurrency, "env")
	test.MustBe(t, []string{"k1:9092", "k2:9092"}, hosts, "string slice from config file")
}

func TestCoocCommand(t *testing.T) {
	dir, err := ioutil.TempDir("", "wdkcmd")
	test.ErrNil(t, err, "getting temp dir")
	defer os.RemoveAll(dir)
	pairs := filepath.Join(dir, "pairs.tsv")
	err = ioutil.WriteFile(pairs, []byte("a\tb\t3\nb\tc\t1\n"), 0644)
	test.ErrNil(t, err, "writing pairs")

	out := &bytes.Buffer{}
	rc := NewRootCommand(os.Stdin, out, &bytes.Buffer{})
	rc.SetArgs([]string{"cooc", "--path", pairs, "--threshold", "0.5"})
	test.ErrNil(t, rc.Execute(), "executing cooc")
	test.MustBe(t, "3\t0.75\ta\tb\n", out.String())
}
