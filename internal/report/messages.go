package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported lists the languages reports can be rendered in. English text
// doubles as the message key, so only the other languages are registered.
var Supported = []language.Tag{language.English, language.Korean}

var matcher = language.NewMatcher(Supported)

func init() {
	ko := language.Korean

	message.SetString(ko, "Lv", "현재레벨")
	message.SetString(ko, "Atk", "공격력")
	message.SetString(ko, "Def", "방어력")
	message.SetString(ko, "Spd", "순발력")
	message.SetString(ko, "HP", "체력")
	message.SetString(ko, "AtkG", "공성")
	message.SetString(ko, "DefG", "방성")
	message.SetString(ko, "SpdG", "순성")
	message.SetString(ko, "TotG", "총성")
	message.SetString(ko, "HPG", "체성")
	message.SetString(ko, "Gain", "증가치")

	message.SetString(ko, "Genes", "초기 보정")
	message.SetString(ko, "Growth profile", "성장 프로필")
	message.SetString(ko, "q=%.3f  growth rate=%.3f  hp growth=%.3f", "q=%.3f  성장률=%.3f  피성=%.3f")
	message.SetString(ko, "mean gain  atk=%.3f  def=%.3f  spd=%.3f  hp=%.3f", "평균 증가치  공=%.3f  방=%.3f  순=%.3f  체=%.3f")
	message.SetString(ko, "Seed: %s", "시드: %s")

	message.SetString(ko, "Batch: %s (%s)  count=%d  level-ups=%d", "[배치 결과] %s(%s)  count=%d, levelUps=%d")
	message.SetString(ko, "Initial displayed attack", "초기 공격력(표기) 분포")
	message.SetString(ko, "Final stats", "최종 스탯 요약")
	message.SetString(ko, "Growth at level %d", "%d레벨 시점 성장치")
	message.SetString(ko, "avg", "평균")
	message.SetString(ko, "min", "최소")
	message.SetString(ko, "max", "최대")
	message.SetString(ko, "count", "마리")
}

// Printer returns a message printer for lang (a BCP 47 tag such as "en"
// or "ko"). Unknown or malformed tags fall back to English.
func Printer(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		return message.NewPrinter(language.English)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return message.NewPrinter(language.English)
	}
	return message.NewPrinter(Supported[idx])
}
