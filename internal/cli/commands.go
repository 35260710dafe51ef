package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"decision-console/internal/model"
	"decision-console/internal/service"
	"decision-console/internal/store"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "查看当前选择的任务与策略",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			st.FetchConfig(cmd.Context())
			snap := st.Snapshot()
			renderKV(a.out, "当前配置", []kv{
				{"API", a.svcCtx.API.BaseURL()},
				{"任务", orDash(snap.CurrentTask)},
				{"策略", orDash(snap.CurrentStrategy)},
			})
			return nil
		},
	}
}

func (a *app) setTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-task <task-id>",
		Short: "选择任务",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			st.FetchTasks(cmd.Context())
			if err := checkID("任务", args[0], model.TaskIDs(st.Snapshot().Tasks)); err != nil {
				return err
			}
			st.SetTask(cmd.Context(), args[0])
			if st.Snapshot().CurrentTask != args[0] {
				warnf(a.out, "设置任务失败，详情见日志")
				return nil
			}
			successf(a.out, "当前任务: %s", args[0])
			return nil
		},
	}
}

func (a *app) setStrategyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-strategy <strategy-id>",
		Short: "选择策略",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			st.FetchStrategies(cmd.Context())
			if err := checkID("策略", args[0], model.StrategyIDs(st.Snapshot().Strategies)); err != nil {
				return err
			}
			st.SetStrategy(cmd.Context(), args[0])
			if st.Snapshot().CurrentStrategy != args[0] {
				warnf(a.out, "设置策略失败，详情见日志")
				return nil
			}
			successf(a.out, "当前策略: %s", args[0])
			return nil
		},
	}
}

func (a *app) tasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "列出任务目录",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			st.FetchConfig(cmd.Context())
			st.FetchTasks(cmd.Context())
			snap := st.Snapshot()
			if len(snap.Tasks) == 0 {
				warnf(a.out, "没有可用任务")
				return nil
			}
			renderTasks(a.out, snap.Tasks, snap.CurrentTask)
			return nil
		},
	}
}

func (a *app) strategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "列出策略目录",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			st.FetchConfig(cmd.Context())
			st.FetchStrategies(cmd.Context())
			snap := st.Snapshot()
			if len(snap.Strategies) == 0 {
				warnf(a.out, "没有可用策略")
				return nil
			}
			renderStrategies(a.out, snap.Strategies, snap.CurrentStrategy)
			return nil
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	var task, strategy string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "运行一次模型",
		Long:  "运行一次模型。未指定 --task/--strategy 时使用远端当前的选择。",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st := a.store()
			st.FetchConfig(ctx)
			st.FetchTasks(ctx)
			st.FetchStrategies(ctx)
			snap := st.Snapshot()

			if task == "" {
				task = snap.CurrentTask
			}
			if strategy == "" {
				strategy = snap.CurrentStrategy
			}
			if err := checkID("任务", task, model.TaskIDs(snap.Tasks)); err != nil {
				return err
			}
			if err := checkID("策略", strategy, model.StrategyIDs(snap.Strategies)); err != nil {
				return err
			}

			resp, err := st.RunModel(ctx, task, strategy)
			if err != nil {
				return fmt.Errorf("运行失败: %w", err)
			}
			for _, p := range resp.Progress {
				successf(a.out, "%s %s", p.Step, p.Status)
			}
			renderResult(a.out, fmt.Sprintf("执行 #%d  %s / %s", resp.ExecutionID, orDash(task), orDash(strategy)), resp.Result)
			renderStats(a.out, st.Snapshot().Stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&task, "task", "t", "", "任务 ID")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "策略 ID")
	return cmd
}

func (a *app) resultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "查看最新结果",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			st.FetchResults(cmd.Context())
			renderResult(a.out, "最新结果", st.Snapshot().LatestResult)
			return nil
		},
	}
}

func (a *app) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <strategy-id>...",
		Short: "对比多个策略的结果",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.store().CompareResults(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("对比失败: %w", err)
			}
			if len(out) == 0 {
				warnf(a.out, "没有可对比的结果")
				return nil
			}
			renderComparison(a.out, out)
			return nil
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	var page, pageSize int
	var summary, markdown bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "分页查看执行历史",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.store().FetchHistory(cmd.Context(), page, pageSize)
			if err != nil {
				return fmt.Errorf("查询历史失败: %w", err)
			}
			if markdown {
				fmt.Fprint(a.out, service.RenderHistoryMarkdown(service.SummarizeHistory(resp.Data), time.Now()))
				return nil
			}
			renderHistory(a.out, resp)
			if summary {
				renderSummary(a.out, service.SummarizeHistory(resp.Data))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", store.DefaultPage, "页码")
	cmd.Flags().IntVar(&pageSize, "page-size", store.DefaultPageSize, "每页条数")
	cmd.Flags().BoolVar(&summary, "summary", false, "附带按策略汇总")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "输出 markdown 报告")
	return cmd
}

func (a *app) deleteHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-history <id>",
		Short: "删除一条历史记录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id 不合法: %s", args[0])
			}
			page, err := a.store().DeleteHistory(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("删除历史失败: %w", err)
			}
			successf(a.out, "已删除 #%d", id)
			renderHistory(a.out, page)
			return nil
		},
	}
}

func (a *app) logsCmd() *cobra.Command {
	var level string
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "查看远端日志",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.store().FetchLogs(cmd.Context(), level, limit)
			if err != nil {
				return fmt.Errorf("查询日志失败: %w", err)
			}
			renderLogs(a.out, resp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", "", "按级别过滤（info/success/warning/error）")
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultLogLimit, "条数上限")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "查看聚合统计",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			if st.FetchStats(cmd.Context()) == nil {
				warnf(a.out, "获取统计失败，显示默认值")
			}
			renderStats(a.out, st.Snapshot().Stats)
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var exportType, outPath string
	var upload bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出数据",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := a.store().ExportData(cmd.Context(), exportType)
			if err != nil {
				return fmt.Errorf("导出失败: %w", err)
			}

			body, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
			if err != nil {
				return fmt.Errorf("序列化导出数据失败: %w", err)
			}
			if outPath == "" {
				fmt.Fprintln(a.out, string(body))
			} else {
				if err := os.WriteFile(outPath, body, 0o644); err != nil {
					return fmt.Errorf("写入文件失败: %w", err)
				}
				successf(a.out, "已写入 %s", outPath)
			}

			if !upload {
				return nil
			}
			archiver := a.svcCtx.Archiver
			if archiver == nil {
				return fmt.Errorf("未配置导出归档（export.s3_bucket）")
			}
			location, err := archiver.Put(cmd.Context(), archiver.Key("", payload.Format), payload)
			if err != nil {
				return err
			}
			successf(a.out, "已归档到 %s", location)
			return nil
		},
	}
	cmd.Flags().StringVarP(&exportType, "type", "t", "json", "导出格式")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "写入文件而不是标准输出")
	cmd.Flags().BoolVar(&upload, "upload", false, "同时上传到 S3")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "查看远端系统状态",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store().FetchSystemStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("查询系统状态失败: %w", err)
			}
			pairs := []kv{
				{"状态", orDash(s.Status)},
				{"运行时长", orDash(s.Uptime)},
				{"CPU", orDash(s.CPUUsage)},
				{"内存", orDash(s.MemoryUsage)},
				{"活跃任务", strconv.Itoa(s.ActiveTasks)},
				{"日志总数", strconv.Itoa(s.TotalLogs)},
			}
			if s.LastExecution != nil {
				pairs = append(pairs, kv{"最近执行", fmt.Sprintf("#%d %s/%s", s.LastExecution.ID, s.LastExecution.Task, s.LastExecution.Strategy)})
			}
			renderKV(a.out, "系统状态", pairs)
			return nil
		},
	}
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "检查远端服务健康状况",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.store().Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("健康检查失败: %w", err)
			}
			successf(a.out, "%s  %s  (version %s)", h.Status, h.Message, orDash(h.Version))
			return nil
		},
	}
}

func (a *app) dataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "管理数据记录",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "列出数据记录",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.store().FetchDataRecords(cmd.Context())
			if err != nil {
				return fmt.Errorf("查询数据失败: %w", err)
			}
			rows := make([][]string, 0, len(resp.Data))
			for _, d := range resp.Data {
				rows = append(rows, []string{strconv.FormatInt(d.ID, 10), d.Name, d.Type, fmt.Sprint(d.Size), orDash(d.CreatedAt)})
			}
			renderTable(a.out, []string{"ID", "名称", "类型", "大小", "创建时间"}, rows)
			return nil
		},
	}

	var dataType, size string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "新增数据记录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.store().CreateDataRecord(cmd.Context(), args[0], dataType, size)
			if err != nil {
				return fmt.Errorf("新增数据失败: %w", err)
			}
			successf(a.out, "已新增 #%d %s", rec.ID, rec.Name)
			return nil
		},
	}
	add.Flags().StringVar(&dataType, "type", "csv", "数据类型")
	add.Flags().StringVar(&size, "size", "", "数据大小")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "删除数据记录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id 不合法: %s", args[0])
			}
			if err := a.store().DeleteDataRecord(cmd.Context(), id); err != nil {
				return fmt.Errorf("删除数据失败: %w", err)
			}
			successf(a.out, "已删除 #%d", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, rm)
	return cmd
}
