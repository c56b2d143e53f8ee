package utils

// Fixed-key i18n for the bot's own strings. Survey content carries its own
// locale maps; only flow text lives here.

var translations = map[string]map[string]string{
	"ru": {
		"start.pick_language": "Выберите язык / Tilni tanlang:",
		"menu.pick_survey":    "Выберите тест:",
		"menu.empty":          "Пока нет доступных тестов.",
		"consent.text": "⚖️ Дисклеймер\n\n" +
			"• Это самооценочные опросники (не медицинская диагностика).\n" +
			"• Данные сохраняются для HR-отчётов при вашем согласии (кнопка «Поделиться HR»).\n" +
			"• Можно пройти анонимно и не делиться результатом.\n\n" +
			"Нажмите «Согласен», чтобы начать.",
		"scale.legend":         "Шкала: 1 (совсем не про меня) … 5 (полностью про меня)",
		"error.no_session":     "Активного теста нет. Выберите тест в меню.",
		"error.no_resume":      "Незавершённого теста нет.",
		"error.bad_rating":     "Пожалуйста, выберите оценку от 1 до 5.",
		"error.unknown_survey": "Такой тест не найден.",
		"error.survey_changed": "Тест обновился, начните его заново из меню.",
		"error.persistence":    "Не удалось сохранить ответ, попробуйте ещё раз.",
		"session.exists":       "У вас есть незавершённый тест. Продолжить или начать заново?",
		"session.resumed":      "Продолжаем с места остановки.",
		"share.none":           "Нет данных для отправки.",
		"share.done":           "Отправлено HR.",
		"summary.top":          "⭐ Топ-факторы: ",
		"summary.caution":      "⚠️ Ответы выглядят поспешными или однотипными — результат может быть неточным.",
	},
	"uz": {
		"start.pick_language": "Tilni tanlang / Выберите язык:",
		"menu.pick_survey":    "Testni tanlang:",
		"menu.empty":          "Hozircha testlar mavjud emas.",
		"consent.text": "⚖️ Ogohlantirish\n\n" +
			"• Bu o‘z-o‘zini baholash so‘rovlari (tibbiy tashxis emas).\n" +
			"• Ma'lumotlar faqat siz rozilik bildirganingizda HR uchun saqlanadi.\n" +
			"• Anonim o‘tish va natijani ulashmaslik mumkin.\n\n" +
			"Boshlash uchun «Roziman» tugmasini bosing.",
		"scale.legend":         "Shkala: 1 (mutlaqo to‘g‘ri emas) … 5 (to‘liq to‘g‘ri)",
		"error.no_session":     "Faol test yo‘q. Menyudan test tanlang.",
		"error.no_resume":      "Tugallanmagan test yo‘q.",
		"error.bad_rating":     "Iltimos, 1 dan 5 gacha baho tanlang.",
		"error.unknown_survey": "Bunday test topilmadi.",
		"error.survey_changed": "Test yangilandi, uni menyudan qaytadan boshlang.",
		"error.persistence":    "Javobni saqlab bo‘lmadi, qayta urinib ko‘ring.",
		"session.exists":       "Sizda tugallanmagan test bor. Davom etasizmi yoki qaytadan boshlaysizmi?",
		"session.resumed":      "To‘xtagan joydan davom etamiz.",
		"share.none":           "Yuborish uchun ma'lumot yo‘q.",
		"share.done":           "HR ga yuborildi.",
		"summary.top":          "⭐ Eng kuchli tomonlar: ",
		"summary.caution":      "⚠️ Javoblar shoshilinch yoki bir xil ko‘rinadi — natija noaniq bo‘lishi mumkin.",
	},
}

// T returns the translated string for key in locale; falls back to Russian.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations["ru"][key]; ok {
		return v
	}
	return key
}
