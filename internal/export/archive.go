package export

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// BuildArchive 将 sourceDir 下的所有普通文件压缩为 destFile，
// 归档内保留相对路径。为保证可复现，条目按路径排序写入。
// 任何一步失败都会删掉 destFile，不留半成品归档。
func BuildArchive(sourceDir, destFile string) error {
	out, err := os.Create(destFile)
	if err != nil {
		return fmt.Errorf("创建归档文件失败: %w", err)
	}

	err = writeArchive(out, sourceDir)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destFile)
		return err
	}
	return nil
}

func writeArchive(out *os.File, sourceDir string) error {
	var files []string
	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("遍历导出目录失败: %w", err)
	}
	sort.Strings(files)

	w := zip.NewWriter(out)
	for _, path := range files {
		if err := addArchiveEntry(w, sourceDir, path); err != nil {
			w.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("写入归档失败: %w", err)
	}
	return nil
}

func addArchiveEntry(w *zip.Writer, sourceDir, path string) error {
	rel, err := filepath.Rel(sourceDir, path)
	if err != nil {
		return fmt.Errorf("计算归档相对路径失败: %w", err)
	}

	entry, err := w.Create(filepath.ToSlash(rel))
	if err != nil {
		return fmt.Errorf("创建归档条目 %s 失败: %w", rel, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("读取归档源文件 %s 失败: %w", rel, err)
	}
	defer src.Close()

	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("写入归档条目 %s 失败: %w", rel, err)
	}
	return nil
}
