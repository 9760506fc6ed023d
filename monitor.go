package testgen

import (
	"sync"
	"sync/atomic"
	"time"
)

// PerformanceMetrics 性能指标收集器
type PerformanceMetrics struct {
	// 生成操作统计
	TotalCases      int64 `json:"total_cases"`      // 总生成次数
	SuccessfulCases int64 `json:"successful_cases"` // 成功生成次数
	FailedCases     int64 `json:"failed_cases"`     // 失败生成次数

	// 输出统计
	BytesWritten int64 `json:"bytes_written"` // 写入总字节数
	FilesWritten int64 `json:"files_written"` // 写入文件数

	// 性能统计
	TotalCaseTime int64 `json:"total_case_time"` // 总生成时间(纳秒)

	// 清单统计
	ManifestPublishes int64 `json:"manifest_publishes"` // 清单发布次数
	ManifestErrors    int64 `json:"manifest_errors"`    // 清单发布错误数

	// 时间戳
	StartTime      int64 `json:"start_time"`       // 开始时间
	LastUpdateTime int64 `json:"last_update_time"` // 最后更新时间
}

// GetSuccessRate 获取成功率
func (pm *PerformanceMetrics) GetSuccessRate() float64 {
	total := atomic.LoadInt64(&pm.TotalCases)
	if total == 0 {
		return 0.0
	}
	successful := atomic.LoadInt64(&pm.SuccessfulCases)
	return float64(successful) / float64(total) * 100.0
}

// GetAverageCaseTime 获取平均单用例生成时间
func (pm *PerformanceMetrics) GetAverageCaseTime() time.Duration {
	total := atomic.LoadInt64(&pm.TotalCases)
	if total == 0 {
		return 0
	}
	totalTime := atomic.LoadInt64(&pm.TotalCaseTime)
	return time.Duration(totalTime / total)
}

// GetThroughput 获取吞吐量(每秒生成用例数)
func (pm *PerformanceMetrics) GetThroughput() float64 {
	startTime := atomic.LoadInt64(&pm.StartTime)
	lastUpdate := atomic.LoadInt64(&pm.LastUpdateTime)
	if startTime == 0 || lastUpdate <= startTime {
		return 0.0
	}

	duration := time.Duration(lastUpdate - startTime)
	totalCases := atomic.LoadInt64(&pm.TotalCases)

	return float64(totalCases) / duration.Seconds()
}

// Reset 重置性能指标
func (pm *PerformanceMetrics) Reset() {
	atomic.StoreInt64(&pm.TotalCases, 0)
	atomic.StoreInt64(&pm.SuccessfulCases, 0)
	atomic.StoreInt64(&pm.FailedCases, 0)
	atomic.StoreInt64(&pm.BytesWritten, 0)
	atomic.StoreInt64(&pm.FilesWritten, 0)
	atomic.StoreInt64(&pm.TotalCaseTime, 0)
	atomic.StoreInt64(&pm.ManifestPublishes, 0)
	atomic.StoreInt64(&pm.ManifestErrors, 0)
	atomic.StoreInt64(&pm.StartTime, time.Now().UnixNano())
	atomic.StoreInt64(&pm.LastUpdateTime, time.Now().UnixNano())
}

// PerformanceMonitor 性能监控器
type PerformanceMonitor struct {
	metrics *PerformanceMetrics
	mu      sync.RWMutex
	enabled bool
}

// NewPerformanceMonitor 创建新的性能监控器
func NewPerformanceMonitor() *PerformanceMonitor {
	pm := &PerformanceMonitor{
		metrics: &PerformanceMetrics{},
		enabled: true,
	}
	pm.metrics.Reset()
	return pm
}

// Enable 启用性能监控
func (pm *PerformanceMonitor) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.enabled = true
}

// Disable 禁用性能监控
func (pm *PerformanceMonitor) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.enabled = false
}

// IsEnabled 检查是否启用了性能监控
func (pm *PerformanceMonitor) IsEnabled() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return pm.enabled
}

// RecordCase 记录一次用例生成
func (pm *PerformanceMonitor) RecordCase(success bool, duration time.Duration) {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.TotalCases, 1)
	if success {
		atomic.AddInt64(&pm.metrics.SuccessfulCases, 1)
	} else {
		atomic.AddInt64(&pm.metrics.FailedCases, 1)
	}
	atomic.AddInt64(&pm.metrics.TotalCaseTime, int64(duration))
	atomic.StoreInt64(&pm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// RecordWrite 记录一次文件写入
func (pm *PerformanceMonitor) RecordWrite(bytes int64) {
	if !pm.IsEnabled() {
		return
	}

	atomic.AddInt64(&pm.metrics.FilesWritten, 1)
	atomic.AddInt64(&pm.metrics.BytesWritten, bytes)
	atomic.StoreInt64(&pm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// RecordManifestPublish 记录清单发布
func (pm *PerformanceMonitor) RecordManifestPublish(success bool) {
	if !pm.IsEnabled() {
		return
	}

	if success {
		atomic.AddInt64(&pm.metrics.ManifestPublishes, 1)
	} else {
		atomic.AddInt64(&pm.metrics.ManifestErrors, 1)
	}
	atomic.StoreInt64(&pm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// GetMetrics 获取当前指标快照
func (pm *PerformanceMonitor) GetMetrics() PerformanceMetrics {
	return PerformanceMetrics{
		TotalCases:        atomic.LoadInt64(&pm.metrics.TotalCases),
		SuccessfulCases:   atomic.LoadInt64(&pm.metrics.SuccessfulCases),
		FailedCases:       atomic.LoadInt64(&pm.metrics.FailedCases),
		BytesWritten:      atomic.LoadInt64(&pm.metrics.BytesWritten),
		FilesWritten:      atomic.LoadInt64(&pm.metrics.FilesWritten),
		TotalCaseTime:     atomic.LoadInt64(&pm.metrics.TotalCaseTime),
		ManifestPublishes: atomic.LoadInt64(&pm.metrics.ManifestPublishes),
		ManifestErrors:    atomic.LoadInt64(&pm.metrics.ManifestErrors),
		StartTime:         atomic.LoadInt64(&pm.metrics.StartTime),
		LastUpdateTime:    atomic.LoadInt64(&pm.metrics.LastUpdateTime),
	}
}

// ResetMetrics 重置性能指标
func (pm *PerformanceMonitor) ResetMetrics() {
	pm.metrics.Reset()
}
