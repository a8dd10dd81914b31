package wdk_test

import (
	"testing"

	"github.com/webdata/wdk"
	"github.com/webdata/wdk/test"
)

func TestDistribution(t *testing.T) {
	tests := []struct {
		values []float64
		exp    wdk.Description
	}{
		{values: nil, exp: wdk.Description{}},
		{values: []float64{3, 1, 2}, exp: wdk.Description{Min: 1, Max: 3, Mean: 2, Median: 2, Count: 3}},
		{values: []float64{4, 1, 3, 2}, exp: wdk.Description{Min: 1, Max: 4, Mean: 2.5, Median: 2.5, Count: 4}},
		{values: []float64{7}, exp: wdk.Description{Min: 7, Max: 7, Mean: 7, Median: 7, Count: 1}},
	}
	for i, tst := range tests {
		d := &wdk.Distribution{}
		for _, v := range tst.values {
			d.Add(v)
		}
		if got := d.Describe(); got != tst.exp {
			t.Errorf("test %d: expected %+v, got %+v", i, tst.exp, got)
		}
	}
}

func TestDistributionMerge(t *testing.T) {
	a, b := &wdk.Distribution{}, &wdk.Distribution{}
	a.Add(1)
	b.Add(5)
	b.Add(3)
	a.Merge(b)
	test.MustBe(t, 3, a.Len())
	test.MustBe(t, float64(3), a.Describe().Median)
}
