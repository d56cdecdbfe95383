package conversation

// User-facing texts and keyboard labels. Russian, matching the audience of
// the conference.

const (
	// Main menu button labels; they double as command equivalents.
	LabelAskSpeaker    = "Задать вопрос спикеру"
	LabelAskAssistant  = "Задать вопрос помощнику"
	LabelGenerateImage = "Генерировать черно-белое изображение"
	LabelPlayGame      = "Играть в игру"
)

// Halls lists the valid hall labels in keyboard order.
var Halls = []string{"Зал 1", "Зал 2", "Зал 3", "Зал 4"}

const (
	textGreeting       = "Привет! Это бот конференции. Выберите действие:"
	textNextAction     = "Выберите следующее действие:"
	textUseMenu        = "Пожалуйста, выберите действие из меню."
	textChooseHall     = "Выберите зал, в котором вы находитесь:"
	textHallInvalid    = "Пожалуйста, выберите зал из предложенных вариантов."
	textHallMissing    = "Пожалуйста, сначала выберите зал."
	textAskQuestion    = ". Теперь введите ваш вопрос для спикера:"
	textQuestionThanks = "Спасибо за вопрос. Спикер ответит на него в конце выступления."
	textQuestionFailed = "Произошла ошибка при отправке вашего вопроса. Пожалуйста, попробуйте еще раз позже."
	textAskAssistant   = "Введите свой вопрос для помощника (ИИ)"
	textAssistantReply = "Ответ помощника:\n\n"
	textAssistantError = "Извините, произошла ошибка при получении ответа от ИИ. Попробуйте еще раз позже."
	textAskImage       = "Введите описание для генерации черно-белого изображения"
	textImageWait      = "Пожалуйста, подождите. Изображение генерится..."
	textImageError     = "Извините, произошла ошибка при получении изображения. Попробуйте еще раз позже."
	textPlayGame       = "Нажмите кнопку ниже, чтобы играть в игру:"

	// anonymousName is used when the transport provides no display name.
	anonymousName = "Anonymous"
)
