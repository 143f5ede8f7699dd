package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/models"
)

const (
	archiveMimeType   = "application/zip"
	archiveTimeFormat = "02-01-2006_15-04-05"
)

// AgentFetcher 按 ID 获取智能体
type AgentFetcher interface {
	Get(ctx context.Context, id string) (*models.Agent, error)
}

// Pipeline 端到端导出编排：从智能体 ID 到可兑换的下载令牌
type Pipeline struct {
	agents     AgentFetcher
	aggregator *Aggregator
	tokens     *TokenCodec
	cacheDir   string
	tokenTTL   time.Duration
	now        func() time.Time
}

// NewPipeline 创建导出流水线
func NewPipeline(agents AgentFetcher, aggregator *Aggregator, tokens *TokenCodec, cacheDir string, tokenTTL time.Duration) *Pipeline {
	return &Pipeline{
		agents:     agents,
		aggregator: aggregator,
		tokens:     tokens,
		cacheDir:   cacheDir,
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
}

// ExportAgent 导出智能体配置包并返回下载令牌。
// 工作目录按调用随机命名，同一智能体可并发导出互不干扰。
func (p *Pipeline) ExportAgent(ctx context.Context, agentID string) (string, error) {
	metrics.ExportsStarted.Inc()
	token, err := p.exportAgent(ctx, agentID)
	if err != nil {
		metrics.ExportsFailed.Inc()
		return "", err
	}
	metrics.ExportsSucceeded.Inc()
	return token, nil
}

func (p *Pipeline) exportAgent(ctx context.Context, agentID string) (string, error) {
	agent, err := p.agents.Get(ctx, agentID)
	if err != nil {
		return "", err
	}

	// 工作目录与落盘归档都以本次导出的随机标识命名，
	// 同名智能体的并发导出互不覆盖；人类可读的名字只进令牌
	exportID := uuid.NewString()
	workDir := filepath.Join(p.cacheDir, exportID)
	configDir := filepath.Join(workDir, "config")
	recognizerDir := filepath.Join(configDir, "recognizer")
	retrieverDir := filepath.Join(configDir, "retriever")
	for _, dir := range []string{recognizerDir, retrieverDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("创建导出工作目录失败: %w", err)
		}
	}

	archivePath := filepath.Join(p.cacheDir, exportID+".zip")
	token, err := p.buildPackage(ctx, agent, workDir, configDir, recognizerDir, retrieverDir, archivePath)

	// 工作目录只在单次导出期间存在，成功失败都要清掉
	if removeErr := os.RemoveAll(workDir); removeErr != nil {
		logger.Warn("清理导出工作目录失败", zap.String("dir", workDir), zap.Error(removeErr))
	}
	if err != nil {
		if removeErr := os.Remove(archivePath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warn("清理导出归档失败", zap.String("path", archivePath), zap.Error(removeErr))
		}
		return "", err
	}
	return token, nil
}

func (p *Pipeline) buildPackage(ctx context.Context, agent *models.Agent, workDir, configDir, recognizerDir, retrieverDir, archivePath string) (string, error) {
	cfg, err := p.aggregator.Assemble(ctx, agent, recognizerDir, retrieverDir)
	if err != nil {
		return "", err
	}

	if err := writeEnvStub(filepath.Join(workDir, ".env"), cfg.CredentialEnvs()); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("编码组合配置失败: %w", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), data, 0o644); err != nil {
		return "", fmt.Errorf("写入组合配置失败: %w", err)
	}

	if err := BuildArchive(workDir, archivePath); err != nil {
		return "", err
	}

	info := FileInformation{
		Name:     p.archiveName(agent.Name),
		MimeType: archiveMimeType,
		Path:     archivePath,
	}
	token, err := p.tokens.Issue(info, p.tokenTTL, "")
	if err != nil {
		return "", err
	}

	logger.Info("智能体配置导出完成",
		zap.String("agent", agent.Name),
		zap.String("archive", archivePath))
	return token, nil
}

// archiveName 生成人类可读的归档名：智能体名 + 时间戳
func (p *Pipeline) archiveName(agentName string) string {
	safe := strings.ReplaceAll(strings.TrimSpace(agentName), " ", "_")
	return fmt.Sprintf("%s_%s.zip", safe, p.now().Format(archiveTimeFormat))
}

// writeEnvStub 写出 .env 凭证占位文件，一行一个变量名，值留空
func writeEnvStub(path string, envs []string) error {
	var b strings.Builder
	for _, env := range envs {
		b.WriteString(env)
		b.WriteString("=\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("写入环境变量占位文件失败: %w", err)
	}
	return nil
}
