package validation

// RegistrationForm 是注册表单。
type RegistrationForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Username string `json:"username" form:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// LoginForm 是登录表单。
type LoginForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// Registration 校验注册表单，邮箱与用户名会先去除首尾空白。
func Registration(f *RegistrationForm) FieldErrors {
	f.Email = trimSpace(f.Email)
	f.Username = trimSpace(f.Username)
	if err := validate.Struct(f); err != nil {
		return translate(err, "")
	}
	return nil
}

// Login 校验登录表单。
func Login(f *LoginForm) FieldErrors {
	f.Email = trimSpace(f.Email)
	if err := validate.Struct(f); err != nil {
		return translate(err, "")
	}
	return nil
}
