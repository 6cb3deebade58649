package booking

import (
	"fmt"
	"strings"
	"time"
)

const banner = "===================="

// Summary renders the plain-text report pushed to the notifier. Times are
// shown in loc.
func (r *Result) Summary(loc *time.Location, now time.Time) string {
	var lines []string
	add := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add(banner)
	add("🎯 SmartPLAY 预订结果摘要")
	add(banner)
	add("")

	if r.Status == StatusSuccess {
		add("📊 状态: ✅ 预订成功")
	} else {
		add("📊 状态: ❌ 预订失败")
	}

	add("🏢 场馆: %s", r.Venue)
	add("🏃 设施类型: %s", r.FacilityType)
	add("📅 目标日期: %s", orNA(r.TargetDate))

	if len(r.SelectedSlots) > 0 {
		add("⏰ 已选时间段:")
		for i, s := range r.SelectedSlots {
			idx := "?"
			if i < len(r.SlotIndices) {
				idx = fmt.Sprint(r.SlotIndices[i])
			}
			add("   %d. %s (索引 %s)", i+1, s, idx)
		}
	} else {
		add("⏰ 已选时间段: 无")
	}

	add("👤 用户: %s", r.Username)
	add("🔐 登录时间: %s", formatTime(r.LoginTime, loc, "15:04:05"))
	add("⏱️  开始时间: %s", r.StartTime.In(loc).Format("2006-01-02 15:04:05"))
	add("⏱️  结束时间: %s", formatTime(r.EndTime, loc, "2006-01-02 15:04:05"))
	add("⌛ 总耗时: %s", FormatDuration(r.Duration(now)))

	if r.Error != "" {
		add("⚠️  错误信息: %s", r.Error)
	}

	if r.Status == StatusSuccess {
		add(banner)
		add("🎉 恭喜！预订成功完成！")
	}
	add(banner)

	return strings.Join(lines, "\n")
}

// FormatDuration renders whole seconds as "X分Y秒" from one minute up,
// otherwise "Y秒".
func FormatDuration(d time.Duration) string {
	secs := int(d / time.Second)
	if secs >= 60 {
		return fmt.Sprintf("%d分%d秒", secs/60, secs%60)
	}
	return fmt.Sprintf("%d秒", secs)
}

func formatTime(t *time.Time, loc *time.Location, layout string) string {
	if t == nil {
		return "N/A"
	}
	return t.In(loc).Format(layout)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
