package ingest

import (
	"sort"
	"strconv"
	"strings"
)

const (
	sensorFilePrefix = "sensor_"
	hrFileSuffix     = "_hr.csv"
	rrFileSuffix     = "_rr.csv"
	statsFileSuffix  = "_statistics.csv"
)

// discoverSensors rebuilds the sensor list from sensor_<index>_<id>_hr.csv
// entries when session_info.csv carries no Sensors table. Ids may contain
// underscores; the index may not.
func discoverSensors(names []string, prefix string, diag *diagnostics) []sensorRow {
	var rows []sensorRow
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, hrFileSuffix) {
			continue
		}
		base := name[len(prefix):]
		if !strings.HasPrefix(base, sensorFilePrefix) {
			continue
		}

		parts := strings.Split(strings.TrimSuffix(base, hrFileSuffix), "_")
		if len(parts) < 3 {
			diag.add(name, 0, "sensor file name has no sensor id")
			continue
		}
		index, err := strconv.Atoi(parts[1])
		if err != nil {
			diag.add(name, 0, "sensor index %q is not an integer", parts[1])
			continue
		}
		id := strings.Join(parts[2:], "_")
		rows = append(rows, sensorRow{index: index, sensorID: id, sensorName: id})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].index < rows[j].index })
	return rows
}

// sensorFileBase per-sensor file stem. Position is 0-based, files are
// numbered from 1.
func sensorFileBase(prefix string, position int, sensorID string) string {
	return prefix + sensorFilePrefix + strconv.Itoa(position+1) + "_" + sensorID
}
