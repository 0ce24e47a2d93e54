package models

import "fmt"

// User-facing messages. Responses carry these verbatim.
const (
	MsgIDRequired        = "請提供身分證字號"
	MsgIDInvalid         = "身分證字號格式不正確"
	MsgBirthdayRequired  = "請提供生日"
	MsgBirthdayInvalid   = "生日格式不正確，請輸入 7 位數字"
	MsgCancelIncomplete  = "請提供完整資料（身分證、課程名稱、確認文字）"
	MsgConfirmIncomplete = "請提供完整資料（身分證、課程名稱）"
	MsgPhraseMismatch    = "確認文字不正確，請輸入「我確定取消」"
	MsgCourseTooLong     = "課程名稱過長"

	MsgNotFound           = "找不到該報名資料"
	MsgAlreadyCancelled   = "此課程報名已經取消"
	MsgAlreadyConfirmed   = "此課程報名已經確認"
	MsgConfirmAfterCancel = "此課程報名已經取消，無法確認"
	MsgCancelSucceeded    = "報名已成功取消"
	MsgConfirmSucceeded   = "已成功確認上課"
)

// MissingColumnMessage is the configuration error for a header that is not in the sheet.
func MissingColumnMessage(header string) string {
	return fmt.Sprintf("試算表缺少「%s」欄位", header)
}
