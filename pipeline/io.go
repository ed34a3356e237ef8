package pipeline

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/seaport-data/fixturewalk/hub"
	"github.com/seaport-data/fixturewalk/mapping"
	"github.com/seaport-data/fixturewalk/value"
)

// ErrBadInput is returned for input that is not a list of flat JSON objects.
var ErrBadInput = errors.New("bad input")

// ReadRecords reads raw rows as JSON Lines or a single JSON array of
// objects. Scalar cell values are converted to text; nested values are an
// error.
func ReadRecords(r io.Reader) ([]mapping.RawRecord, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	var rows []map[string]any
	if first == '[' {
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadInput, err)
		}
	} else {
		for line := 1; ; line++ {
			var row map[string]any
			err := dec.Decode(&row)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%w: record %d: %w", ErrBadInput, line, err)
			}
			rows = append(rows, row)
		}
	}

	records := make([]mapping.RawRecord, 0, len(rows))
	for i, row := range rows {
		raw := make(mapping.RawRecord, len(row))
		for k, v := range row {
			switch v.(type) {
			case map[string]any, []any:
				return nil, fmt.Errorf("%w: record %d: field %q is not a scalar", ErrBadInput, i+1, k)
			}
			raw[k] = value.Text(v)
		}
		records = append(records, raw)
	}
	return records, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

// WriteRecords writes records as JSON Lines.
func WriteRecords(w io.Writer, records []hub.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		data, err := hub.MarshalJSON(rec)
		if err != nil {
			return fmt.Errorf("encoding %s record: %w", rec.Kind(), err)
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
