package mdk

// featureTypes are the recognized sampling-geometry labels.
var featureTypes = []string{
	"point",
	"timeSeries",
	"trajectory",
	"profile",
	"timeSeriesProfile",
	"trajectoryProfile",
}

// featureTypeFixes maps the case variants and typos that show up in the
// wild onto the canonical label.
var featureTypeFixes = map[string]string{
	"TimeSeries": "timeSeries",
	"timeseries": "timeSeries",
	"timseries":  "timeSeries",
}

// NormalizeFeatureType maps a feature type label reported by a dataset's
// access layer onto the controlled set. Known typos are corrected; anything
// else is passed through with a warning rather than rejected.
func NormalizeFeatureType(ft string, lg Logger) string {
	if lg == nil {
		lg = NopLogger{}
	}
	if contains(featureTypes, ft) {
		return ft
	}
	if fixed, ok := featureTypeFixes[ft]; ok {
		lg.Printf("correcting feature type %q to %q", ft, fixed)
		return fixed
	}
	lg.Printf("feature type %q is not in the controlled set, keeping it", ft)
	return ft
}
