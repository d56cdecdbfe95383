package keyboard

import "testing"

func TestReplyButtons(t *testing.T) {
	markup := ReplyButtons(
		[]string{"Зал 1", "Зал 2"},
		[]string{"Зал 3"},
	)

	if !markup.ResizeKeyboard {
		t.Fatal("reply keyboard must be resizable")
	}
	if len(markup.ReplyKeyboard) != 2 {
		t.Fatalf("rows = %d", len(markup.ReplyKeyboard))
	}
	if len(markup.ReplyKeyboard[0]) != 2 || len(markup.ReplyKeyboard[1]) != 1 {
		t.Fatalf("row sizes = %d, %d", len(markup.ReplyKeyboard[0]), len(markup.ReplyKeyboard[1]))
	}
	if markup.ReplyKeyboard[0][0].Text != "Зал 1" {
		t.Fatalf("first button = %q", markup.ReplyKeyboard[0][0].Text)
	}
}

func TestURLButton(t *testing.T) {
	markup := URLButton("Играть", "https://game.example.com")

	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 1 {
		t.Fatalf("inline keyboard shape = %v", markup.InlineKeyboard)
	}
	btn := markup.InlineKeyboard[0][0]
	if btn.Text != "Играть" || btn.URL != "https://game.example.com" {
		t.Fatalf("button = %+v", btn)
	}
}

func TestRemoveKeyboard(t *testing.T) {
	if !RemoveKeyboard().RemoveKeyboard {
		t.Fatal("expected RemoveKeyboard flag")
	}
}
