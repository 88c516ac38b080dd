// Package assets embeds the static resources the demo loads at startup.
package assets

import (
	_ "embed"
)

// TileSheet is the default tile sheet: a 14x9 grid of 32 px tiles.
//
//go:embed tilesheet.png
var TileSheet []byte

// WorldMap is the default map layout script.
//
//go:embed worldmap.tengo
var WorldMap []byte
