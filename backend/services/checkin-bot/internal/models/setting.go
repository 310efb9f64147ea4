package models

// SettingDispatchChatID stores the dispatcher chat chosen with /setdispatch.
const SettingDispatchChatID = "dispatch_chat_id"
