package simplecms

// DefaultWhoWeAre is the home-page copy stored on first read.
func DefaultWhoWeAre() WhoWeAre {
	return WhoWeAre{
		Image:         "assets/img/normal/about_1-1.jpg",
		MainHeading:   "Who We Are?",
		Tagline:       "Empowering Integrators, Safeguarding Industries",
		Description:   "We are a leading provider of fire safety solutions with years of experience in the industry. Our commitment to excellence and innovation has made us a trusted partner for businesses worldwide.",
		PartnerText:   "Glyptic: Partnering with pros to protect what matters most!",
		CertifiedText: "Certified & Awards winner",
		QualityText:   "Best Quality Services",
	}
}

// DefaultContactInfo is the contact-page document stored on first read.
func DefaultContactInfo() ContactInfo {
	return ContactInfo{
		EmailAddress: EmailAddress{
			Title:  "Email address",
			Emails: []string{"glyptic.sales@gmail.com", "service@glyptic.in"},
		},
		PhoneNumber: PhoneNumber{
			Title:  "Phone number",
			Phones: []string{"+91 9836838438", "+91 7020035493", "+91 9831688742", "+91 8240185599"},
		},
		Location: Location{
			Title:   "Our Location",
			Address: "Registered Office: Raipur, Bhita, District -Burdwan – 713102, West Bengal, India Branch Office: 1363 Naskarhat Madhya Para, Kolkata – 700039. West Bengal, India",
		},
	}
}
