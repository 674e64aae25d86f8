package tags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// Folder art is looked up by stem first, then by extension.
var (
	artStems = []string{"cover", "folder", "album", "front"}
	artExts  = []string{".jpg", ".png", ".jpeg"}
)

// FolderArt returns the image sitting next to mediaPath that serves as its
// album art, or "" when the directory has none. Names match regardless of
// case.
func FolderArt(mediaPath string) string {
	dir := filepath.Dir(mediaPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}

	files := lo.FilterSliceToMap(entries, func(e os.DirEntry) (string, string, bool) {
		return strings.ToLower(e.Name()), e.Name(), e.Type().IsRegular()
	})
	for _, stem := range artStems {
		for _, ext := range artExts {
			if name, ok := files[stem+ext]; ok {
				return filepath.Join(dir, name)
			}
		}
	}
	return ""
}
