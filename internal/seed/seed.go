// Package seed 从 YAML 文件导入工具
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ashwinyue/tool-catalog/internal/logger"
	"github.com/ashwinyue/tool-catalog/internal/model"
	"github.com/ashwinyue/tool-catalog/internal/schema"
	"github.com/ashwinyue/tool-catalog/internal/service/tool"
)

// File 种子文件
type File struct {
	Tools []Entry `yaml:"tools"`
}

// Entry 单个工具，schema 以文本形式书写，允许不严格的 JSON
type Entry struct {
	tool.CreateToolRequest `yaml:",inline"`
	InputSchema            string                 `yaml:"inputSchema"`
	OutputSchema           string                 `yaml:"outputSchema"`
	Flags                  map[string]interface{} `yaml:"flags"`
}

// Creator 创建工具
type Creator interface {
	CreateTool(ctx context.Context, req *tool.CreateToolRequest) (*model.Tool, error)
}

// Report 导入结果
type Report struct {
	Created int
	Skipped int
	Failed  map[string]error
}

// Load 解析种子内容
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// LoadFile 读取种子文件
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}

// Request 转为创建请求，修复 schema 文本并按宽松规则解析标记
func (e Entry) Request() (*tool.CreateToolRequest, error) {
	req := e.CreateToolRequest

	var err error
	if req.InputSchema, err = schema.Repair(strings.TrimSpace(e.InputSchema)); err != nil {
		return nil, fmt.Errorf("inputSchema: %w", err)
	}
	if req.OutputSchema, err = schema.Repair(strings.TrimSpace(e.OutputSchema)); err != nil {
		return nil, fmt.Errorf("outputSchema: %w", err)
	}

	if len(e.Flags) > 0 {
		raw, err := json.Marshal(e.Flags)
		if err != nil {
			return nil, fmt.Errorf("flags: %w", err)
		}
		if err := json.Unmarshal(raw, &req.Flags); err != nil {
			return nil, fmt.Errorf("flags: %w", err)
		}
	}
	return &req, nil
}

// Run 逐个创建工具，已存在的跳过，单个失败不影响其余条目
func Run(ctx context.Context, creator Creator, f *File, log *logger.Logger) Report {
	report := Report{Failed: map[string]error{}}
	for _, entry := range f.Tools {
		req, err := entry.Request()
		if err == nil {
			_, err = creator.CreateTool(ctx, req)
		}
		switch {
		case err == nil:
			report.Created++
		case errors.Is(err, tool.ErrToolNameExists):
			report.Skipped++
		default:
			report.Failed[entry.Name] = err
			log.Warn("failed to seed tool", "name", entry.Name, "error", err)
		}
	}
	log.Info("seed finished", "created", report.Created, "skipped", report.Skipped, "failed", len(report.Failed))
	return report
}
