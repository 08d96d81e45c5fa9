package framework

import (
	"context"
	"fmt"
)

// PreProcessor 顺序执行处理链，任一步失败即停止
type PreProcessor struct {
	steps []ProcessorFunc
}

// NewPreProcessor 创建处理链
func NewPreProcessor(steps []ProcessorFunc) *PreProcessor {
	return &PreProcessor{steps: steps}
}

// Run 执行处理链
// 每一步开始前检查 ctx，任务超时后不再进入下一步
func (p *PreProcessor) Run(ctx context.Context) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("processor[%d] skipped: %w", i, err)
		}
		if err := step(ctx); err != nil {
			return fmt.Errorf("processor[%d] failed: %w", i, err)
		}
	}
	return nil
}
