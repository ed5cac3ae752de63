package lessons

import (
	"fmt"
	"strings"
	"time"
)

const (
	textNoLessons       = "📭 Нет запланированных занятий."
	textNoUpcoming      = "📭 Нет предстоящих занятий."
	textNothingToday    = "📭 Сегодня занятий нет."
	textAddDenied       = "❌ У вас нет прав для добавления занятий."
	textDeleteDenied    = "❌ У вас нет прав для удаления занятий."
	textChatNotAllowed  = "❌ Этот чат не авторизован для использования бота."
	textDeleteUsage     = "❌ Используйте: /delete_lesson НОМЕР"
	textBadPosition     = "❌ Неверный номер занятия."
	textInternalFailure = "❌ Произошла ошибка."

	textAddUsage = "❌ Неверный формат команды.\n" +
		"Используйте: /add_lesson ГГГГ-ММ-ДД ЧЧ:ММ описание\n\n" +
		"📌 Пример:\n" +
		"/add_lesson 2025-10-21 17:00 Подготовка к занятию по Python"
)

func startText(now time.Time, s Settings) string {
	return fmt.Sprintf("👋 Привет! Я KubReminder — твой помощник для школы программирования.\n"+
		"⏰ Сейчас: %s\n\n"+
		"🎯 Я здесь, чтобы помочь преподавателям не забывать свои занятия и вовремя о них напомнить.\n\n"+
		"📌 Что я умею:\n"+
		"📚 Показать ближайшие занятия: /lessons\n"+
		"📌 Показать занятия на сегодня: /today\n"+
		"📝 Добавлять новые занятия (только админ): /add_lesson\n"+
		"❌ Удалять занятия (только админ): /delete_lesson\n\n"+
		"🔔 Я буду напоминать о занятиях заранее (за %d минут) и каждый день в %s!",
		now.Format(dateLayout+" "+timeLayout), int(s.Lookahead.Minutes()), clockText(s.DigestTime))
}

func clockText(fromMidnight time.Duration) string {
	return time.Time{}.Add(fromMidnight).Format(timeLayout)
}

func upcomingText(entries []Entry) string {
	var b strings.Builder
	b.WriteString("📚 Ближайшие занятия:\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%d. 📅 %s 🕒 %s\n   📝 %s\n\n", e.Position, e.Date, e.Time, e.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func todayText(entries []Entry) string {
	var b strings.Builder
	b.WriteString("📌 Занятия на сегодня:\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%d. 🕒 %s 📝 %s\n", e.Position, e.Time, e.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func addedText(added Entry, all []Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Занятие добавлено:\n📅 Дата: %s\n🕒 Время: %s\n📝 Описание: %s\n\n",
		added.Date, added.Time, added.Description)
	b.WriteString("📌 Все текущие занятия:\n")
	for _, e := range all {
		fmt.Fprintf(&b, "%d. %s %s — %s\n", e.Position, e.Date, e.Time, e.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func deletedText(removed Lesson) string {
	return fmt.Sprintf("🗑 Занятие удалено: %s", removed.Description)
}

func reminderText(e Entry, lookahead time.Duration) string {
	return fmt.Sprintf("⏰ Напоминание через %d минут:\n📝 %s в %s", int(lookahead.Minutes()), e.Description, e.Time)
}

func digestText(entries []Entry) string {
	var b strings.Builder
	b.WriteString("🔔 Сегодня занятия:\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "🕒 %s 📝 %s\n", e.Time, e.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
