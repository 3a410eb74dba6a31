package main

import (
	"strconv"

	"github.com/joho/godotenv"
)

const (
	envImage      = "TIERFS_IMAGE"
	envSectors    = "TIERFS_SECTORS"
	envDirEntries = "TIERFS_DIR_ENTRIES"

	defaultSectors = 32 * 1024
)

type defaults struct {
	imagePath  string
	sectors    int
	dirEntries int
}

// envDefaults carries optional settings from a .env file in the working
// directory. A missing file just leaves the built-in defaults.
var envDefaults = loadDefaults()

func loadDefaults() defaults {
	d := defaults{
		sectors: defaultSectors,
	}

	config, err := godotenv.Read(".env")
	if err != nil {
		return d
	}

	if v := config[envImage]; v != "" {
		d.imagePath = v
	}
	if v := config[envSectors]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			d.sectors = n
		}
	}
	if v := config[envDirEntries]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			d.dirEntries = n
		}
	}

	return d
}
