package assessment

// Keyword vocabularies for stage inference and symptom extraction. The lists
// cover English, Korean, Japanese and Spanish, matching the languages the
// triage backend responds in.

// completionMarkers signal an explicitly finished consultation; they adopt
// the final stage regardless of message count.
var completionMarkers = []string{
	"consultation completed",
	"consultation is complete",
	"assessment complete",
	"final diagnosis",
	"상담이 완료되었습니다",
	"최종 진단",
	"相談が完了しました",
	"最終診断",
	"consulta completada",
	"diagnóstico final",
}

// diagnosisMarkers are the recommendation/facility-referral vocabulary of a
// final answer. Two or more in one response count as a diagnosis.
var diagnosisMarkers = []string{
	"diagnosis",
	"likely condition",
	"immediate care",
	"recommend",
	"hospital",
	"pharmacy",
	"over-the-counter",
	"emergency",
	"진단",
	"병원",
	"약국",
	"응급",
	"診断",
	"病院",
	"薬局",
	"救急",
	"diagnóstico",
	"farmacia",
	"emergencia",
}

// questionMarkers indicate a clarifying follow-up question.
var questionMarkers = []string{
	"?",
	"when did",
	"how long",
	"do you have",
	"is there",
	"can you describe",
	"언제",
	"얼마나",
	"있나요",
	"있으신가요",
	"いつ",
	"ですか",
	"ありますか",
	"¿",
	"cuándo",
	"cuánto",
}

// symptomKeywords maps a canonical symptom name to its multilingual variants.
var symptomKeywords = map[string][]string{
	"headache":       {"headache", "head hurts", "두통", "머리가 아파", "頭痛", "dolor de cabeza"},
	"fever":          {"fever", "열이", "발열", "高熱", "熱が", "fiebre"},
	"cough":          {"cough", "기침", "咳", "tos"},
	"sore throat":    {"sore throat", "인후통", "목이 아파", "喉の痛み", "dolor de garganta"},
	"nausea":         {"nausea", "vomit", "구토", "메스꺼", "吐き気", "náuseas", "vómito"},
	"dizziness":      {"dizzy", "dizziness", "어지러", "현기증", "めまい", "mareo"},
	"bleeding":       {"bleeding", "won't stop bleeding", "출혈", "피가", "出血", "sangrado", "sangre"},
	"burn":           {"burn", "scald", "화상", "火傷", "quemadura"},
	"cut":            {"cut", "wound", "laceration", "상처", "베였", "切り傷", "corte", "herida"},
	"fracture":       {"fracture", "broken bone", "골절", "骨折", "fractura"},
	"chest pain":     {"chest pain", "흉통", "가슴이 아파", "胸の痛み", "dolor de pecho"},
	"abdominal pain": {"stomach ache", "abdominal pain", "복통", "배가 아파", "腹痛", "dolor de estómago"},
	"rash":           {"rash", "발진", "発疹", "sarpullido"},
	"shortness of breath": {
		"shortness of breath", "difficulty breathing", "숨쉬기 힘들",
		"호흡곤란", "息苦しい", "dificultad para respirar",
	},
}

// durationKeywords mark phrases describing symptom duration.
var durationKeywords = []string{
	"minute", "hour", "day", "week", "month",
	"yesterday", "today", "this morning", "last night", "since", "ago",
	"어제", "오늘", "아침부터", "시간", "일째", "주일",
	"昨日", "今日", "時間", "日前", "週間",
	"ayer", "hoy", "hora", "día", "semana", "desde",
}

// severityKeywords in decreasing order of precedence.
var severityLevels = []string{"severe", "moderate", "mild"}

var severityKeywords = map[string][]string{
	"severe": {
		"severe", "intense", "unbearable", "worst", "excruciating",
		"심한", "심각", "너무 아파", "激しい", "ひどい", "severo", "intenso", "insoportable",
	},
	"moderate": {
		"moderate", "quite", "noticeable",
		"보통", "꽤", "中程度", "moderado", "bastante",
	},
	"mild": {
		"mild", "slight", "a little", "minor",
		"약간", "조금", "가벼운", "軽い", "少し", "leve", "un poco", "ligero",
	},
}
