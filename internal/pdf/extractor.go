package pdf

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// Page 单页内容：文本与内嵌图片（PNG编码）
type Page struct {
	Number int // 从1开始
	Text   string
	Images [][]byte
}

// Document 一份解析后的PDF文档
type Document struct {
	Name  string
	Pages []Page
}

// Open 解析PDF文件，逐页提取文本与内嵌图片
// 单页提取失败只跳过该页，不中断整个文档
func Open(path string) (*Document, error) {
	pdfBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取PDF文件失败: %w", err)
	}

	pdfReader, err := model.NewPdfReader(bytes.NewReader(pdfBytes))
	if err != nil {
		return nil, fmt.Errorf("解析PDF失败: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("获取PDF页数失败: %w", err)
	}

	doc := &Document{
		Name:  filepath.Base(path),
		Pages: make([]Page, 0, numPages),
	}

	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue
		}

		ex, err := extractor.New(page)
		if err != nil {
			continue
		}

		text, err := ex.ExtractText()
		if err != nil {
			text = ""
		}

		doc.Pages = append(doc.Pages, Page{
			Number: i,
			Text:   text,
			Images: extractImages(ex),
		})
	}

	return doc, nil
}

func extractImages(ex *extractor.Extractor) [][]byte {
	pageImages, err := ex.ExtractPageImages(nil)
	if err != nil {
		return nil
	}

	images := make([][]byte, 0, len(pageImages.Images))
	for _, mark := range pageImages.Images {
		goImg, err := mark.Image.ToGoImage()
		if err != nil {
			continue
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, goImg); err != nil {
			continue
		}
		images = append(images, buf.Bytes())
	}
	return images
}

// ListFiles 列出目录下的PDF文件（不递归）
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("读取PDF目录失败: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ".pdf" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}
