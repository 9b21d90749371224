package dataset

import (
	"path/filepath"

	"github.com/David-Botos/irma-ingress/pkg/config"
	"github.com/David-Botos/irma-ingress/pkg/source"
)

// Layout resolves the label files and image roots of an ImageCLEFmed 2009
// data directory
type Layout struct {
	DataDir     string
	TrainLabels string
	TrainImages string
	TestLabels  string
	TestImages  string
	Delimiter   rune
}

// DefaultLayout uses the file names of the published ImageCLEFmed 2009 release
func DefaultLayout(dataDir string) Layout {
	return Layout{
		DataDir:     dataDir,
		TrainLabels: config.DefaultTrainLabels,
		TrainImages: config.DefaultTrainImages,
		TestLabels:  config.DefaultTestLabels,
		TestImages:  config.DefaultTestImages,
		Delimiter:   source.DefaultDelimiter,
	}
}

// LayoutFromConfig builds a layout from dataset configuration
func LayoutFromConfig(cfg config.DatasetConfig) Layout {
	return Layout{
		DataDir:     cfg.DataDir,
		TrainLabels: cfg.TrainLabels,
		TrainImages: cfg.TrainImages,
		TestLabels:  cfg.TestLabels,
		TestImages:  cfg.TestImages,
		Delimiter:   cfg.Delimiter,
	}
}

// Partitions returns the CSV-backed train and test partitions
func (l Layout) Partitions() (train, test Partition) {
	train = Partition{
		Name:      PartitionTrain,
		Source:    source.NewCSVSource(l.resolve(l.TrainLabels), l.Delimiter),
		ImageRoot: l.resolve(l.TrainImages),
	}
	test = Partition{
		Name:      PartitionTest,
		Source:    source.NewCSVSource(l.resolve(l.TestLabels), l.Delimiter),
		ImageRoot: l.resolve(l.TestImages),
	}
	return train, test
}

// ImageRoots returns the resolved train and test image directories
func (l Layout) ImageRoots() (train, test string) {
	return l.resolve(l.TrainImages), l.resolve(l.TestImages)
}

func (l Layout) resolve(p string) string {
	if filepath.IsAbs(p) || l.DataDir == "" {
		return p
	}
	return filepath.Join(l.DataDir, p)
}
