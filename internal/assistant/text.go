// ABOUTME: Canned texts shown by the assistant widget
// ABOUTME: Welcome, attachment caption, apologies, and starter suggestions

package assistant

import (
	_ "embed"
	"errors"
)

// ErrQuotaExceeded marks generator failures caused by rate limits or quota.
var ErrQuotaExceeded = errors.New("generator quota exceeded")

const (
	// WelcomeMessage is shown when the widget opens with nothing to send.
	WelcomeMessage = "반갑습니다. 룩스리엘의 지능형 컨설팅 시스템 **테루아(Terua)**입니다. \n\n" +
		"가장 투명하고 정밀한 시선으로 당신의 공간을 분석해 드리겠습니다. " +
		"**실무 데이터**를 기반으로 현실적인 직영가 차이를 확인하시거나, 궁금하신 점을 편하게 말씀해 주십시오."

	// ImageCaption stands in for the user's text when only an image is sent.
	ImageCaption = "첨부된 비주얼 데이터를 분석하여 룩스리엘의 직영가 견적 비교를 부탁드립니다."

	QuotaApology = "\n\n**[시스템 알림] 현재 서비스 접속량이 많아 일시적으로 응답이 지연되고 있습니다.** " +
		"잠시 후 다시 시도해 주시면 감사하겠습니다. (API 할당량 초과)"

	GenericApology = "\n\n**[시스템 알림] 마스터 서버와의 통신 중 예상치 못한 오류가 발생했습니다.** " +
		"데이터 보안을 위해 분석을 중단합니다. 잠시 후 다시 시도해 주십시오."
)

// SystemPrompt is the fixed persona instruction sent with every request.
//
//go:embed prompt.md
var SystemPrompt string

var suggestions = []string{
	"한남동 60평 대리석 시공",
	"시중가 절반 절감 원리",
	"미니멀 럭셔리 주방 설계",
	"실무자 직영가 좌표 문의",
}

// Suggestions returns the starter prompts offered before the first send.
func Suggestions() []string {
	out := make([]string, len(suggestions))
	copy(out, suggestions)
	return out
}

// Apology maps a generator error to the text appended to the reply.
func Apology(err error) string {
	if errors.Is(err, ErrQuotaExceeded) {
		return QuotaApology
	}
	return GenericApology
}
