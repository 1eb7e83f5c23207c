package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/aihub/pdfchat-go/internal/logger"
	"github.com/aihub/pdfchat-go/internal/pdf"
	"github.com/aihub/pdfchat-go/internal/store"
	"go.uber.org/zap"
)

// 图片描述生成失败时的占位描述，记录仍会入库
const imageDescriptionFallback = "Image description unavailable."

// Ingestor 文档入库流水线：清洗、分块、向量化、写入存储
// 单个块或图片失败只跳过该单元，整篇文档继续处理
type Ingestor struct {
	store         store.Store
	embedder      Embedder
	describer     Describer
	chunker       *Chunker
	minChunkChars int
	contextWindow int
}

// IngestorOptions 流水线配置
type IngestorOptions struct {
	MinChunkChars int // 小于该长度的块被丢弃
	ContextWindow int // 图片上下文片段的最大字符数
}

// NewIngestor 创建入库流水线
func NewIngestor(st store.Store, embedder Embedder, describer Describer, chunker *Chunker, opts IngestorOptions) *Ingestor {
	if opts.MinChunkChars <= 0 {
		opts.MinChunkChars = 50
	}
	if opts.ContextWindow <= 0 {
		opts.ContextWindow = 300
	}
	return &Ingestor{
		store:         st,
		embedder:      embedder,
		describer:     describer,
		chunker:       chunker,
		minChunkChars: opts.MinChunkChars,
		contextWindow: opts.ContextWindow,
	}
}

// ProcessDirectory 处理目录下所有PDF文件（不递归）
func (g *Ingestor) ProcessDirectory(ctx context.Context, dir string) error {
	files, err := pdf.ListFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Info("no pdf files found", zap.String("dir", dir))
		return nil
	}

	for _, file := range files {
		doc, err := pdf.Open(file)
		if err != nil {
			logger.Error("open pdf failed", zap.String("file", file), zap.Error(err))
			continue
		}
		logger.Info("processing document", zap.String("document", doc.Name), zap.Int("pages", len(doc.Pages)))
		if err := g.ProcessDocument(ctx, doc); err != nil {
			logger.Error("process document failed", zap.String("document", doc.Name), zap.Error(err))
		}
	}
	return nil
}

// pageChunk 带页码的文本块
type pageChunk struct {
	page int
	text string
}

// ProcessDocument 处理单篇文档：文本块与图片记录分别入库
func (g *Ingestor) ProcessDocument(ctx context.Context, doc *pdf.Document) error {
	chunks := g.extractChunks(doc)

	for idx, chunk := range chunks {
		id := fmt.Sprintf("%s_%s_%d_%d", store.ContentTypeText, doc.Name, chunk.page, idx)
		g.embedAndStore(ctx, store.ContentRecord{
			ID:           id,
			DocumentName: doc.Name,
			PageNumber:   chunk.page,
			ContentType:  store.ContentTypeText,
			Content:      chunk.text,
		})
	}

	for _, page := range doc.Pages {
		cleanedText := Clean(page.Text)
		for imgIdx, imageBytes := range page.Images {
			content := g.describeImage(ctx, imageBytes, cleanedText, imgIdx)
			id := fmt.Sprintf("%s_%s_%d_%d", store.ContentTypeImage, doc.Name, page.Number, imgIdx)
			g.embedAndStore(ctx, store.ContentRecord{
				ID:           id,
				DocumentName: doc.Name,
				PageNumber:   page.Number,
				ContentType:  store.ContentTypeImage,
				Content:      content,
			})
		}
	}

	return nil
}

// extractChunks 去除页眉页脚后清洗并分块，丢弃过短的块
func (g *Ingestor) extractChunks(doc *pdf.Document) []pageChunk {
	pageLines := make([][]string, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		pageLines = append(pageLines, strings.Split(page.Text, "\n"))
	}
	boilerplate := DetectBoilerplate(pageLines)

	var chunks []pageChunk
	for i, page := range doc.Pages {
		var kept []string
		for _, line := range pageLines[i] {
			if _, ok := boilerplate[line]; !ok {
				kept = append(kept, line)
			}
		}
		cleaned := Clean(strings.Join(kept, "\n"))
		for _, text := range g.chunker.Split(cleaned) {
			if len(text) > g.minChunkChars {
				chunks = append(chunks, pageChunk{page: page.Number, text: text})
			}
		}
	}
	return chunks
}

// describeImage 生成图片描述并拼接邻近文本上下文
// 以图片在页内的序号近似其在文本中的位置，属于尽力而为的启发式
func (g *Ingestor) describeImage(ctx context.Context, imageBytes []byte, pageText string, position int) string {
	surrounding := surroundingText(pageText, position, g.contextWindow)

	description := imageDescriptionFallback
	if g.describer != nil && g.describer.Ready() {
		if desc, err := g.describer.Describe(ctx, imageBytes); err != nil {
			logger.Warn("image description failed", zap.Error(err))
		} else {
			description = desc
		}
	}

	return fmt.Sprintf("%s Context: %s", description, surrounding)
}

// embedAndStore 向量化并写入；失败跳过该单元
func (g *Ingestor) embedAndStore(ctx context.Context, record store.ContentRecord) {
	embedding, err := g.embedder.Embed(ctx, record.Content)
	if err != nil {
		logger.Warn("embedding failed, unit skipped", zap.String("id", record.ID), zap.Error(err))
		return
	}
	record.Embedding = embedding

	if err := g.store.Upsert(ctx, record); err != nil {
		logger.Error("store upsert failed", zap.String("id", record.ID), zap.Error(err))
		return
	}
	logger.Debug("stored content", zap.String("id", record.ID))
}

// surroundingText 取图片位置前一句到后一句的文本作为上下文
func surroundingText(pageText string, position, maxLength int) string {
	sentences := SplitSentences(pageText)

	start := position - 1
	if start < 0 {
		start = 0
	}
	end := position + 2
	if end > len(sentences) {
		end = len(sentences)
	}
	if start > end {
		start = end
	}

	snippet := strings.Join(sentences[start:end], " ")
	runes := []rune(snippet)
	if len(runes) > maxLength {
		snippet = string(runes[:maxLength])
	}
	return strings.TrimSpace(snippet)
}
