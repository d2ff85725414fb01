package fileinfo

// PointStats tallies point counts across a run. Inference only ever
// populates Inserted; Outside (points falling beyond the working
// bounds) and Overflows (points displaced past a chunk's capacity)
// are accounted during tree insertion, which happens downstream of
// this subsystem. The fields travel on the descriptor so the builder
// accumulates into the same record.
type PointStats struct {
	Inserted  uint64
	Outside   uint64
	Overflows uint64
}

// FileStats tallies per-file outcomes across a run: how many
// manifest entries landed in each terminal Status.
type FileStats struct {
	Inserted uint64
	Omitted  uint64
	Errors   uint64
}

// Tally walks a manifest List and accumulates FileStats and
// PointStats in one pass.
func Tally(list List) (FileStats, PointStats) {
	var fs FileStats
	var ps PointStats
	for _, f := range list {
		switch f.Status {
		case Inserted:
			fs.Inserted++
			ps.Inserted += f.NumPoints
		case Omitted:
			fs.Omitted++
		case Error:
			fs.Errors++
		}
	}
	return fs, ps
}
