package casefile

import (
	"os"

	"github.com/dustin/go-humanize"
)

type Meta struct {
	Path      string
	Size      int64
	SizeHuman string
}

func NewMeta(path string, fi os.FileInfo) Meta {
	return Meta{
		Path:      path,
		Size:      fi.Size(),
		SizeHuman: humanize.Bytes(uint64(fi.Size())),
	}
}
