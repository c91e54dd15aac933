package client

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/eringen/pulseboard/dashboard"
)

// Decode parses a summary payload. Fields missing from the payload (or set to
// null) stay absent in the snapshot.
func Decode(body []byte) (*dashboard.Snapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, &dashboard.FetchError{Message: "invalid analytics payload"}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, &dashboard.FetchError{Message: "invalid analytics payload: expected an object"}
	}

	snap := &dashboard.Snapshot{}
	var err error
	if snap.TotalVisits, err = count(root, "total_visits"); err != nil {
		return nil, err
	}
	if snap.UniqueUsers, err = count(root, "unique_users"); err != nil {
		return nil, err
	}
	if snap.APIHits, err = count(root, "api_hits"); err != nil {
		return nil, err
	}
	if snap.EndpointStats, err = endpointStats(root.Get("endpoint_stats")); err != nil {
		return nil, err
	}
	if lu := root.Get("last_updated"); present(lu) {
		t := lu.Time()
		if !t.IsZero() {
			snap.LastUpdated = &t
		}
	}
	return snap, nil
}

func present(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null
}

func count(root gjson.Result, key string) (*int64, error) {
	v := root.Get(key)
	if !present(v) {
		return nil, nil
	}
	n, err := nonNegative(key, v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func nonNegative(key string, v gjson.Result) (int64, error) {
	if v.Type != gjson.Number {
		return 0, &dashboard.FetchError{Message: fmt.Sprintf("invalid analytics payload: %s is not a number", key)}
	}
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return 0, &dashboard.FetchError{Message: fmt.Sprintf("invalid analytics payload: %s is not an integer count", key)}
	}
	if n < 0 {
		return 0, &dashboard.FetchError{Message: fmt.Sprintf("invalid analytics payload: %s is negative", key)}
	}
	return n, nil
}

// endpointStats accepts both {"/x": 10} and {"/x": {"hits": 10, ...}}.
func endpointStats(v gjson.Result) (map[string]dashboard.EndpointStat, error) {
	if !present(v) {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, &dashboard.FetchError{Message: "invalid analytics payload: endpoint_stats is not an object"}
	}

	stats := make(map[string]dashboard.EndpointStat)
	var err error
	v.ForEach(func(key, val gjson.Result) bool {
		name := key.String()
		switch {
		case val.Type == gjson.Number:
			var n int64
			if n, err = nonNegative("endpoint_stats."+name, val); err != nil {
				return false
			}
			stats[name] = dashboard.EndpointStat{Hits: n}
		case val.IsObject():
			var st dashboard.EndpointStat
			if st, err = statsRecord(name, val); err != nil {
				return false
			}
			stats[name] = st
		default:
			err = &dashboard.FetchError{Message: fmt.Sprintf("invalid analytics payload: endpoint_stats.%s has unsupported type", name)}
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func statsRecord(name string, v gjson.Result) (dashboard.EndpointStat, error) {
	st := dashboard.EndpointStat{Fields: make(map[string]int64)}
	var err error
	v.ForEach(func(key, val gjson.Result) bool {
		if val.Type != gjson.Number {
			return true
		}
		var n int64
		if n, err = nonNegative("endpoint_stats."+name+"."+key.String(), val); err != nil {
			return false
		}
		st.Fields[key.String()] = n
		return true
	})
	if err != nil {
		return dashboard.EndpointStat{}, err
	}
	switch {
	case hasField(st.Fields, "hits"):
		st.Hits = st.Fields["hits"]
	case hasField(st.Fields, "count"):
		st.Hits = st.Fields["count"]
	}
	return st, nil
}

func hasField(m map[string]int64, k string) bool {
	_, ok := m[k]
	return ok
}
