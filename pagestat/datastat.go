package pagestat

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/webdata/wdk"
)

// DataReport is the aggregate of a data statistics file, which holds one
// line per processed archive segment.
type DataReport struct {
	PagesTotal            int64     `json:"pagesTotal"`
	PagesParsed           int64     `json:"pagesParsed"`
	PagesWithTriples      int64     `json:"pagesWithTriples"`
	TotalSize             wdk.Bytes `json:"totalSize"`
	CPUHours              float64   `json:"cpuHours"`
	AveragePagesPerSecond float64   `json:"averagePagesPerSecond"`
}

var dataColumns = []string{"pagesTotal", "pagesParsed", "pagesTriples", "size", "duration", "rate"}

// ReadDataStats sums the comma separated data statistics in r. Durations
// are in minutes. Rates which are not finite are logged and left out of
// the average.
func ReadDataStats(r io.Reader, opts ...Option) (*DataReport, error) {
	s := newSettings(opts)
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("no header found")
	} else if err != nil {
		return nil, errors.Wrap(err, "reading header")
	}
	cols := make(map[string]int, len(head))
	for i, name := range head {
		cols[name] = i
	}
	for _, name := range dataColumns {
		if _, ok := cols[name]; !ok {
			return nil, errors.Errorf("reading header: missing column %s", name)
		}
	}

	report := &DataReport{}
	var minutes float64
	rate := average{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "reading line %d", line)
		}
		if len(rec) < len(head) {
			continue
		}
		ints := make([]int64, 4)
		for i, name := range dataColumns[:4] {
			ints[i], err = strconv.ParseInt(rec[cols[name]], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: parsing %s", line, name)
			}
		}
		duration, err := strconv.ParseFloat(rec[cols["duration"]], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: parsing duration", line)
		}
		r, err := strconv.ParseFloat(rec[cols["rate"]], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d: parsing rate", line)
		}
		report.PagesTotal += ints[0]
		report.PagesParsed += ints[1]
		report.PagesWithTriples += ints[2]
		report.TotalSize += wdk.Bytes(ints[3])
		minutes += duration
		if math.IsNaN(r) || math.IsInf(r, 0) {
			s.log.Printf("line %d: rate is %v, leaving it out", line, r)
			continue
		}
		rate.n++
		rate.sum += r
	}
	report.CPUHours = minutes / 60
	report.AveragePagesPerSecond = rate.value()
	return report, nil
}
