package leaderboard

import "sort"

// Rank 对一组用户战绩做确定性排名：
// 分数降序；同分时更早达到该分数（LastScoredAt更早）者在前；
// 仍然相同则按UUID字典序，保证输出稳定。名次从1开始，不并列。
func Rank(standings []Standing) []Entry {
	sorted := append([]Standing(nil), standings...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if !a.LastScoredAt.Equal(b.LastScoredAt) {
			return a.LastScoredAt.Before(b.LastScoredAt)
		}
		return a.UserUUID < b.UserUUID
	})

	entries := make([]Entry, len(sorted))
	for i, s := range sorted {
		entries[i] = Entry{Rank: i + 1, UserUUID: s.UserUUID, Points: s.Points}
	}
	return entries
}
