package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/David-Botos/irma-ingress/pkg/irma"
	"github.com/David-Botos/irma-ingress/pkg/model"
)

// Summary holds label distributions of a dataset
type Summary struct {
	Total               int            `json:"total"`
	Partitions          map[string]int `json:"partitions"`
	ImagingModalities   map[string]int `json:"imaging_modalities"`
	ImagingOrientations map[string]int `json:"imaging_orientations"`
	BodyRegions         map[string]int `json:"body_regions"`
	BinaryLabels        map[int]int    `json:"binary_labels"`
}

// Summarize counts records per partition and per label value
func Summarize(ds *model.Dataset) Summary {
	s := Summary{
		Partitions:          make(map[string]int),
		ImagingModalities:   make(map[string]int),
		ImagingOrientations: make(map[string]int),
		BodyRegions:         make(map[string]int),
		BinaryLabels:        make(map[int]int),
	}
	if ds == nil {
		return s
	}

	s.Total = ds.Len()
	for _, r := range ds.Records {
		s.Partitions[r.Partition]++
		s.ImagingModalities[r.ImagingModality]++
		s.ImagingOrientations[r.ImagingOrientation]++
		s.BodyRegions[r.BodyRegion]++
		s.BinaryLabels[r.BinaryLabel]++
	}
	return s
}

// ExtremityShare returns the fraction of records labelled as extremity
func (s Summary) ExtremityShare() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.BinaryLabels[irma.LabelExtremity]) / float64(s.Total)
}

// Report renders the summary as text
func (s Summary) Report() string {
	var sb strings.Builder

	sb.WriteString("=== IRMA DATASET SUMMARY ===\n")
	sb.WriteString(fmt.Sprintf("Records: %d\n", s.Total))
	writeCounts(&sb, "Partitions", s.Partitions, s.Total)
	writeCounts(&sb, "Imaging Modality", s.ImagingModalities, s.Total)
	writeCounts(&sb, "Imaging Orientation", s.ImagingOrientations, s.Total)
	writeCounts(&sb, "Body Region", s.BodyRegions, s.Total)

	sb.WriteString("\nBinary Label:\n")
	sb.WriteString(fmt.Sprintf("  %-30s %6d\n", irma.Extremity, s.BinaryLabels[irma.LabelExtremity]))
	sb.WriteString(fmt.Sprintf("  %-30s %6d\n", irma.Central, s.BinaryLabels[irma.LabelCentral]))
	sb.WriteString(fmt.Sprintf("  extremity share: %.1f%%\n", s.ExtremityShare()*100))

	return sb.String()
}

// ToJSON returns the summary as JSON
func (s Summary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func writeCounts(sb *strings.Builder, title string, counts map[string]int, total int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	// Largest first, then by name
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	sb.WriteString(fmt.Sprintf("\n%s:\n", title))
	for _, k := range keys {
		pct := 0.0
		if total > 0 {
			pct = float64(counts[k]) / float64(total) * 100
		}
		sb.WriteString(fmt.Sprintf("  %-30s %6d (%5.1f%%)\n", k, counts[k], pct))
	}
}
