package mailer

const mailTemplates = `
{{define "shipping_notice"}}
<html>
<body>
  <h2>Good news, {{.CustomerName}}!</h2>
  <p>Your order <strong>{{.Reference}}</strong> is on its way.</p>
  <table>
    {{range .Items}}
    <tr>
      <td><img src="{{.ImageURL}}" alt="{{.ProductName}}" width="64"/></td>
      <td>{{.ProductName}}</td>
      <td>x{{.Quantity}}</td>
      <td>{{money .UnitPrice}}</td>
    </tr>
    {{end}}
  </table>
  <p>Order total: <strong>{{money .TotalAmount}}</strong></p>
  <p>Tracking number: <strong>{{.TrackingNumber}}</strong></p>
  <p>Courier: {{.CourierInfo}}</p>
</body>
</html>
{{end}}

{{define "review_request"}}
<html>
<body>
  <h2>Hi {{.CustomerName}},</h2>
  <p>Thanks for your order <strong>{{.Reference}}</strong>. We'd love to
  hear what you think of your purchase:</p>
  <ul>
    {{range .Products}}
    <li>{{.Name}}</li>
    {{end}}
  </ul>
  <p>It only takes a minute, and it helps other shoppers a lot.</p>
</body>
</html>
{{end}}
`
